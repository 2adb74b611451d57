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

import (
	"fmt"

	"github.com/quasilyte/gamepads/internal/gamepaddb"
)

// Build-time configuration defaults. There is no file- or environment-based
// configuration surface; callers size a Container once, at construction.
const (
	DefaultMaxGamepads = 4
	DefaultMaxEvents   = 32
)

// Config bundles the two knobs a caller can tune per Container.
type Config struct {
	// MaxGamepads is the fixed capacity of the gamepad array. Zero means
	// DefaultMaxGamepads.
	MaxGamepads int
	// MaxEvents is the capacity of the queued-event ring buffer. Zero
	// means DefaultMaxEvents.
	MaxEvents int
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxGamepads <= 0 {
		cfg.MaxGamepads = DefaultMaxGamepads
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}
	return cfg
}

// Container is the application-injected facade this package exposes: a
// pre-allocated fixed-capacity array of gamepads plus the event queue and
// poll-mode flags. Nothing prevents running several independently, but one
// Container per process is the common case.
type Container struct {
	cfg Config

	reg *registry
	db  *gamepaddb.DB

	events       eventQueue
	queueEvents  bool
	polledEvents bool

	callbacks Callbacks

	backend backend
}

// NewContainer allocates a Container with the given configuration. The
// platform backend and mapping database are not touched until Init is
// called.
func NewContainer(cfg Config) *Container {
	cfg = cfg.withDefaults()
	return &Container{
		cfg:    cfg,
		reg:    newRegistry(cfg.MaxGamepads),
		db:     gamepaddb.NewDefaultDB(platformName),
		events: newEventQueue(cfg.MaxEvents),
	}
}

// Init zeros the container, builds the free list and starts the platform
// backend, which enumerates already-connected devices and emits a
// synthetic Connect for each. A nil Container is a programmer error, not a
// runtime condition, and panics.
func (c *Container) Init() error {
	if c == nil {
		panic("gamepads: Init called on a nil Container")
	}
	c.reg.rebuildFreeList()
	c.events.reset()
	c.queueEvents = false
	c.polledEvents = false
	c.backend = newBackend()
	if err := c.backend.initPlatform(c); err != nil {
		return fmt.Errorf("gamepads: backend init failed: %w", err)
	}
	return nil
}

// Free tears down the backend and releases every active gamepad, returning
// the Container to an equivalent initial state.
func (c *Container) Free() {
	if c == nil {
		panic("gamepads: Free called on a nil Container")
	}
	if c.backend != nil {
		c.backend.freePlatform(c)
	}
	// Active() snapshots the list first: releaseGamepad ultimately calls
	// registry.release, which unlinks the current node from the active list
	// it's being walked over, so iterating activeForEach directly here would
	// stop after the first gamepad.
	for _, g := range c.Active() {
		c.releaseGamepad(g)
	}
	c.reg.rebuildFreeList()
	c.events.reset()
	c.queueEvents = false
	c.polledEvents = false
	c.backend = nil
}

// SetQueueEvents enables or disables appending to the event queue. Polling
// and callbacks are unaffected either way.
func (c *Container) SetQueueEvents(enabled bool) {
	c.queueEvents = enabled
}

// Poll drains hot-plug notifications, then updates every active gamepad's
// raw input, in that order. It returns true if anything happened this
// cycle.
func (c *Container) Poll() bool {
	handled := c.backend.pollPlatform(c)
	c.reg.activeForEach(func(g *Gamepad) {
		if c.backend.updatePlatform(c, g) {
			handled = true
		}
	})
	return handled
}

// CheckQueuedEvent pops the oldest queued event without polling, and marks
// polling as having been driven manually.
func (c *Container) CheckQueuedEvent() (Event, bool) {
	c.polledEvents = true
	return c.events.pop()
}

// CheckEvent implements a "pump until drained, then refill" idiom: if the
// queue is empty and the last drain hasn't been acknowledged yet, it
// auto-enables queuing, polls once, then pops. Once the queue empties, the
// next call polls again.
func (c *Container) CheckEvent() (Event, bool) {
	if c.events.len == 0 && !c.polledEvents {
		c.queueEvents = true
		c.Poll()
		c.polledEvents = true
	}
	e, ok := c.events.pop()
	if c.events.len == 0 {
		c.polledEvents = false
	}
	return e, ok
}

// UpdateMappings parses mapping text and merges it into the database
// (append-or-replace by GUID), then re-runs mapping resolution over every
// active gamepad. Parse failures on individual lines never stop the rest
// of the import.
func (c *Container) UpdateMappings(text []byte) error {
	before := c.db.Len()
	if err := c.db.Update(text, platformName); err != nil {
		return fmt.Errorf("gamepads: update mappings failed: %w", err)
	}
	c.reg.activeForEach(func(g *Gamepad) {
		g.mapping, _ = c.db.FindValid(g.GUID)
	})
	_ = before
	return nil
}

// SetConnectCallback installs fn as the connect callback and returns the
// previous one (possibly nil).
func (c *Container) SetConnectCallback(fn func(*Gamepad)) func(*Gamepad) {
	prev := c.callbacks.Connect
	c.callbacks.Connect = fn
	return prev
}

// SetDisconnectCallback installs fn as the disconnect callback and returns
// the previous one.
func (c *Container) SetDisconnectCallback(fn func(*Gamepad)) func(*Gamepad) {
	prev := c.callbacks.Disconnect
	c.callbacks.Disconnect = fn
	return prev
}

// SetPressCallback installs fn as the button-press callback and returns
// the previous one.
func (c *Container) SetPressCallback(fn func(*Gamepad, Button)) func(*Gamepad, Button) {
	prev := c.callbacks.Press
	c.callbacks.Press = fn
	return prev
}

// SetReleaseCallback installs fn as the button-release callback and
// returns the previous one.
func (c *Container) SetReleaseCallback(fn func(*Gamepad, Button)) func(*Gamepad, Button) {
	prev := c.callbacks.Release
	c.callbacks.Release = fn
	return prev
}

// SetAxisMoveCallback installs fn as the axis-move callback and returns
// the previous one.
func (c *Container) SetAxisMoveCallback(fn func(*Gamepad, Axis, float32)) func(*Gamepad, Axis, float32) {
	prev := c.callbacks.AxisMove
	c.callbacks.AxisMove = fn
	return prev
}

// Active returns every currently connected gamepad, in discovery order.
func (c *Container) Active() []*Gamepad {
	var out []*Gamepad
	c.reg.activeForEach(func(g *Gamepad) {
		out = append(out, g)
	})
	return out
}

// connectGamepad is the backend-facing half of discovery: acquire a free
// slot, populate its identity, resolve its mapping and dispatch a Connect
// event. ErrNoFreeSlot means "too many connected gamepads" and must be
// swallowed by the backend.
func (c *Container) connectGamepad(name, guid string) (*Gamepad, error) {
	g, err := c.reg.find()
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.GUID = guid
	g.mapping, _ = c.db.FindValid(guid)
	c.handleConnectEvent(g)
	return g, nil
}

// disconnectGamepad is the backend-facing half of teardown: dispatch a
// Disconnect event, close the platform device handle, and release the
// slot back to the free list.
func (c *Container) disconnectGamepad(g *Gamepad) {
	c.handleDisconnectEvent(g)
	c.releaseGamepad(g)
}

func (c *Container) releaseGamepad(g *Gamepad) {
	c.backend.releasePlatform(g)
	c.reg.release(g)
}

// resolveButton resolves a raw native button code to a canonical one: try
// the mapping's reverse table first, fall back to the backend's hardcoded
// table, and report Unknown if neither resolves.
func (c *Container) resolveButton(g *Gamepad, raw uint32) Button {
	if g.mapping != nil && int(raw) < len(g.mapping.RButtons) {
		if sb := g.mapping.RButtons[raw]; sb != gamepaddb.StandardButtonUnknown {
			return standardButtonToButton[sb]
		}
	}
	return c.backend.buttonFallback(raw)
}

// resolveAxis resolves a raw native axis code to a canonical one, the same
// way resolveButton does for buttons.
func (c *Container) resolveAxis(g *Gamepad, raw uint32) Axis {
	if g.mapping != nil && int(raw) < len(g.mapping.RAxes) {
		if sa := g.mapping.RAxes[raw]; sa != gamepaddb.StandardAxisUnknown {
			return Axis(sa)
		}
	}
	return c.backend.axisFallback(raw)
}

// markButtonSupported resolves raw to a canonical button and, if it
// resolves to one, flags it as present on g. Backends call this during
// device discovery for every raw code their mapping or fallback table
// could plausibly cover, so Button(...).Supported reflects what the
// physical device actually exposes rather than defaulting to false forever.
func (c *Container) markButtonSupported(g *Gamepad, raw uint32) {
	if b := c.resolveButton(g, raw); b != ButtonUnknown {
		g.buttons[b].Supported = true
	}
}

// markAxisSupported resolves raw to a canonical axis, flags it supported
// and seeds its default deadzone. Backends call this during device
// discovery alongside markButtonSupported.
func (c *Container) markAxisSupported(g *Gamepad, raw uint32) {
	a := c.resolveAxis(g, raw)
	if a == AxisUnknown {
		return
	}
	g.axes[a].Supported = true
	g.axes[a].Deadzone = defaultAxisDeadzone(a)
}
