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

// fakeBackend stands in for a platform backend in tests that only need the
// resolution fallback tables, not a real device.
type fakeBackend struct{}

func (fakeBackend) initPlatform(c *Container) error              { return nil }
func (fakeBackend) freePlatform(c *Container)                     {}
func (fakeBackend) pollPlatform(c *Container) bool                { return false }
func (fakeBackend) updatePlatform(c *Container, g *Gamepad) bool  { return false }
func (fakeBackend) releasePlatform(g *Gamepad)                    {}
func (fakeBackend) buttonFallback(code uint32) Button {
	if code == 0 {
		return ButtonSouth
	}
	return ButtonUnknown
}
func (fakeBackend) axisFallback(code uint32) Axis {
	if code == 0 {
		return AxisLeftX
	}
	return AxisUnknown
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	c := NewContainer(Config{MaxGamepads: 2, MaxEvents: 4})
	c.backend = fakeBackend{}
	return c
}

func TestContainerConnectGamepadFillsSlotAndFiresCallback(t *testing.T) {
	c := newTestContainer(t)
	var connected *Gamepad
	c.SetConnectCallback(func(g *Gamepad) { connected = g })

	g, err := c.connectGamepad("Test Pad", "deadbeefdeadbeefdeadbeefdeadbeef")
	require.NoError(t, err)
	require.Same(t, connected, g)
	require.True(t, g.Connected)
	require.Len(t, c.Active(), 1)
}

func TestContainerConnectGamepadErrNoFreeSlot(t *testing.T) {
	c := newTestContainer(t)
	_, err := c.connectGamepad("A", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	_, err = c.connectGamepad("B", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.NoError(t, err)
	_, err = c.connectGamepad("C", "cccccccccccccccccccccccccccccccc"[:32])
	require.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestContainerSetCallbackReturnsPrevious(t *testing.T) {
	c := newTestContainer(t)
	first := func(g *Gamepad) {}
	prev := c.SetConnectCallback(first)
	require.Nil(t, prev)

	second := func(g *Gamepad) {}
	prev = c.SetConnectCallback(second)
	require.NotNil(t, prev)
}

func TestContainerHandleButtonEventIgnoresNoOpTransition(t *testing.T) {
	c := newTestContainer(t)
	c.SetQueueEvents(true)
	g, _ := c.connectGamepad("Pad", "00000000000000000000000000000000"[:32])

	presses := 0
	c.SetPressCallback(func(g *Gamepad, b Button) { presses++ })

	c.handleButtonEvent(g, ButtonSouth, false) // already false: no-op
	require.Equal(t, 0, presses)

	c.handleButtonEvent(g, ButtonSouth, true)
	require.Equal(t, 1, presses)
	require.True(t, g.ButtonPressed(ButtonSouth))
}

func TestContainerEventsDispatchInFIFOOrder(t *testing.T) {
	c := newTestContainer(t)
	c.SetQueueEvents(true)
	g, _ := c.connectGamepad("Pad", "11111111111111111111111111111111"[:32])
	// connectGamepad already queued a Connect event.

	c.handleButtonEvent(g, ButtonSouth, true)
	c.handleAxisEvent(g, AxisLeftX, 0.5)

	e1, ok := c.CheckQueuedEvent()
	require.True(t, ok)
	require.Equal(t, EventConnect, e1.Type)

	e2, ok := c.CheckQueuedEvent()
	require.True(t, ok)
	require.Equal(t, EventButtonPress, e2.Type)
	require.Equal(t, ButtonSouth, e2.Button)

	e3, ok := c.CheckQueuedEvent()
	require.True(t, ok)
	require.Equal(t, EventAxisMove, e3.Type)
	require.Equal(t, AxisLeftX, e3.Axis)

	_, ok = c.CheckQueuedEvent()
	require.False(t, ok)
}

func TestContainerDisconnectReleasesSlot(t *testing.T) {
	c := newTestContainer(t)
	g, _ := c.connectGamepad("Pad", "22222222222222222222222222222222"[:32])
	c.disconnectGamepad(g)

	require.Len(t, c.Active(), 0)
	require.Equal(t, 2, c.reg.free.count)
}

func TestContainerResolveButtonFallsBackToBackendTable(t *testing.T) {
	c := newTestContainer(t)
	g, _ := c.connectGamepad("Pad", "33333333333333333333333333333333"[:32])

	require.Equal(t, ButtonSouth, c.resolveButton(g, 0))
	require.Equal(t, ButtonUnknown, c.resolveButton(g, 99))
	require.Equal(t, AxisLeftX, c.resolveAxis(g, 0))
	require.Equal(t, AxisUnknown, c.resolveAxis(g, 99))
}

func TestContainerUpdateMappingsReResolvesActiveGamepads(t *testing.T) {
	c := newTestContainer(t)
	guid := "04000000000000000000000000000000"[:32]
	g, _ := c.connectGamepad("Pad", guid)
	require.Nil(t, g.mapping)

	line := guid + ",Pad,a:b0,leftx:a0,platform:Linux,\n"
	require.NoError(t, c.UpdateMappings([]byte(line)))

	require.NotNil(t, g.mapping)
}

func TestContainerCheckEventPollsThenDrains(t *testing.T) {
	c := newTestContainer(t)
	// No queuing configured yet; CheckEvent must enable it and poll once.
	e, ok := c.CheckEvent()
	require.False(t, ok)
	require.True(t, c.queueEvents)
	// The queue is drained, so the next CheckEvent polls again.
	require.False(t, c.polledEvents)
	_ = e
}
