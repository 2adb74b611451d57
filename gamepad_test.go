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

func TestButtonStateEdges(t *testing.T) {
	var s ButtonState
	require.False(t, s.Pressed())
	require.False(t, s.Released())
	require.False(t, s.Down())

	s.previous, s.Current = false, true
	require.True(t, s.Pressed())
	require.False(t, s.Released())
	require.False(t, s.Down())

	s.previous, s.Current = true, true
	require.True(t, s.Down())
	require.False(t, s.Released())

	s.previous, s.Current = true, false
	require.True(t, s.Released())
	require.False(t, s.Pressed())
}

func TestGamepadButtonOutOfRangeReturnsZeroValue(t *testing.T) {
	var g Gamepad
	require.Equal(t, ButtonState{}, g.Button(ButtonUnknown))
	require.Equal(t, ButtonState{}, g.Button(Button(numButtons)))
	require.Equal(t, AxisState{}, g.Axis(AxisUnknown))
	require.Equal(t, AxisState{}, g.Axis(Axis(numAxes)))
}

func TestGamepadResetPreservesIndexAndLinks(t *testing.T) {
	g := Gamepad{Index: 2, prev: 1, next: 3, Name: "pad", Connected: true}
	g.buttons[ButtonSouth].Current = true

	g.reset()

	require.Equal(t, 2, g.Index)
	require.Equal(t, 1, g.prev)
	require.Equal(t, 3, g.next)
	require.Equal(t, "", g.Name)
	require.False(t, g.Connected)
	require.False(t, g.ButtonDown(ButtonSouth))
}

func TestButtonAndAxisNameBounds(t *testing.T) {
	require.Equal(t, "South Button", ButtonName(ButtonSouth))
	require.Equal(t, "Unknown Button", ButtonName(ButtonUnknown))
	require.Equal(t, "Unknown Button", ButtonName(Button(numButtons)))

	require.Equal(t, "Left X Axis", AxisName(AxisLeftX))
	require.Equal(t, "Unknown Axis", AxisName(AxisUnknown))
	require.Equal(t, "Unknown Axis", AxisName(Axis(numAxes)))
}
