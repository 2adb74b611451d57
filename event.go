// Copyright 2024 The Gamepads Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gamepads

// EventType discriminates the kind of change an Event records.
type EventType int

const (
	EventNone EventType = iota
	EventConnect
	EventDisconnect
	EventButtonPress
	EventButtonRelease
	EventAxisMove
)

// Event records that something changed. It deliberately does not carry a
// value or state: the consumer reads the referenced Gamepad's current
// state, which implies an Event is only meaningful while its Gamepad is
// still active.
type Event struct {
	Type    EventType
	Gamepad *Gamepad
	Button  Button
	Axis    Axis
}

// eventQueue is a fixed-capacity ring buffer of Events, popped in arrival
// order. A buffer that fills from the back and pops from the back would
// behave as a LIFO stack despite being named and shaped like a queue; this
// implementation deliberately pops from the front instead, since FIFO is
// what every caller of a "queue" expects and no public contract depends on
// reversed order.
type eventQueue struct {
	buf        []Event
	start, len int
}

func newEventQueue(capacity int) eventQueue {
	return eventQueue{buf: make([]Event, capacity)}
}

func (q *eventQueue) reset() {
	q.start, q.len = 0, 0
}

func (q *eventQueue) full() bool {
	return q.len == len(q.buf)
}

func (q *eventQueue) push(e Event) bool {
	if q.full() {
		return false
	}
	idx := (q.start + q.len) % len(q.buf)
	q.buf[idx] = e
	q.len++
	return true
}

func (q *eventQueue) pop() (Event, bool) {
	if q.len == 0 {
		return Event{}, false
	}
	e := q.buf[q.start]
	q.start = (q.start + 1) % len(q.buf)
	q.len--
	return e, true
}

// Callbacks holds the five hooks an application can install for connect,
// disconnect, button press/release and axis movement. These live on the
// Container rather than behind a process-global function pointer table,
// since nothing here forces a single process-wide instance.
type Callbacks struct {
	Connect    func(g *Gamepad)
	Disconnect func(g *Gamepad)
	Press      func(g *Gamepad, b Button)
	Release    func(g *Gamepad, b Button)
	AxisMove   func(g *Gamepad, a Axis, value float32)
}

// handleButtonEvent is the single pipeline entry point for button state
// changes. It validates (drops a no-op state), classifies, invokes the
// callback, commits state and enqueues, in that fixed order.
func (c *Container) handleButtonEvent(g *Gamepad, b Button, pressed bool) {
	if b < 0 || int(b) >= numButtons {
		return
	}
	state := &g.buttons[b]
	if pressed == state.Current {
		return
	}

	var typ EventType
	if pressed {
		typ = EventButtonPress
		if c.callbacks.Press != nil {
			c.callbacks.Press(g, b)
		}
	} else {
		typ = EventButtonRelease
		if c.callbacks.Release != nil {
			c.callbacks.Release(g, b)
		}
	}

	state.previous = state.Current
	state.Current = pressed

	c.enqueue(Event{Type: typ, Gamepad: g, Button: b})
}

// handleAxisEvent is the single pipeline entry point for axis value
// changes.
func (c *Container) handleAxisEvent(g *Gamepad, a Axis, value float32) {
	if a < 0 || int(a) >= numAxes {
		return
	}
	state := &g.axes[a]
	if value == state.Value {
		return
	}

	if c.callbacks.AxisMove != nil {
		c.callbacks.AxisMove(g, a, value)
	}

	state.Value = value

	c.enqueue(Event{Type: EventAxisMove, Gamepad: g, Axis: a})
}

// handleConnectEvent fires the Connect callback and enqueues a Connect
// event. The caller is responsible for the registry move: connect and
// disconnect both let the backend drive list membership separately.
func (c *Container) handleConnectEvent(g *Gamepad) {
	g.Connected = true
	if c.callbacks.Connect != nil {
		c.callbacks.Connect(g)
	}
	c.enqueue(Event{Type: EventConnect, Gamepad: g})
}

// handleDisconnectEvent fires the Disconnect callback and enqueues a
// Disconnect event, before the caller releases the slot.
func (c *Container) handleDisconnectEvent(g *Gamepad) {
	g.Connected = false
	if c.callbacks.Disconnect != nil {
		c.callbacks.Disconnect(g)
	}
	c.enqueue(Event{Type: EventDisconnect, Gamepad: g})
}

// enqueue appends to the event queue if queuing is enabled and there is
// room; otherwise it silently drops the event for this frame.
func (c *Container) enqueue(e Event) {
	if !c.queueEvents {
		return
	}
	c.events.push(e)
}
