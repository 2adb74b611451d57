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
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEventQueueIsFIFO asserts events pop in arrival order, not reverse
// order.
func TestEventQueueIsFIFO(t *testing.T) {
	q := newEventQueue(3)
	require.True(t, q.push(Event{Type: EventButtonPress}))
	require.True(t, q.push(Event{Type: EventButtonRelease}))
	require.True(t, q.push(Event{Type: EventAxisMove}))

	e1, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, EventButtonPress, e1.Type)

	e2, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, EventButtonRelease, e2.Type)

	e3, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, EventAxisMove, e3.Type)
}

func TestEventQueueFullDropsPush(t *testing.T) {
	q := newEventQueue(2)
	require.True(t, q.push(Event{Type: EventConnect}))
	require.True(t, q.push(Event{Type: EventDisconnect}))
	require.False(t, q.push(Event{Type: EventAxisMove}))
}

func TestEventQueuePopEmpty(t *testing.T) {
	q := newEventQueue(2)
	_, ok := q.pop()
	require.False(t, ok)
}

func TestEventQueueWrapsAroundRingBuffer(t *testing.T) {
	q := newEventQueue(2)
	q.push(Event{Type: EventConnect})
	q.push(Event{Type: EventDisconnect})
	q.pop()
	require.True(t, q.push(Event{Type: EventAxisMove}))

	e, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, EventDisconnect, e.Type)

	e, ok = q.pop()
	require.True(t, ok)
	require.Equal(t, EventAxisMove, e.Type)
}

func TestEventQueueReset(t *testing.T) {
	q := newEventQueue(2)
	q.push(Event{Type: EventConnect})
	q.reset()
	_, ok := q.pop()
	require.False(t, ok)
	require.False(t, q.full())
}
