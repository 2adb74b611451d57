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

import "github.com/quasilyte/gamepads/internal/gamepaddb"

// Button is a canonical, platform-independent button identifier.
type Button int

// ButtonUnknown is the sentinel for "no canonical mapping found".
const ButtonUnknown Button = -1

// Button is Unknown (-1) plus 28 valid variants, numbered 0..27.
const (
	ButtonSouth Button = iota
	ButtonEast
	ButtonWest
	ButtonNorth
	ButtonBack
	ButtonGuide
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonDpadLeft
	ButtonDpadRight
	ButtonDpadUp
	ButtonDpadDown
	ButtonLeftTrigger
	ButtonRightTrigger
	ButtonMisc1
	ButtonRightPaddle1
	ButtonLeftPaddle1
	ButtonRightPaddle2
	ButtonLeftPaddle2
	ButtonTouchpad
	ButtonMisc2
	ButtonMisc3
	ButtonMisc4
	ButtonMisc5
	ButtonMisc6

	numButtons = iota
)

// Axis is a canonical, platform-independent analog axis identifier.
type Axis int

// AxisUnknown is the sentinel for "no canonical mapping found".
const AxisUnknown Axis = -1

// Axis is Unknown (-1) plus the core six analog axes, the hat composites
// and a handful of extras seen on flight sticks and wheels.
const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger
	AxisHatDpadLeftRight
	AxisHatDpadUpDown
	AxisThrottle
	AxisRudder
	AxisWheel
	AxisGas
	AxisBrake
	AxisHat1X
	AxisHat1Y
	AxisHat2X
	AxisHat2Y
	AxisHat3X
	AxisHat3Y
	AxisPressure
	AxisDistance
	AxisTiltX
	AxisTiltY
	AxisToolWidth
	AxisVolume
	AxisProfile
	AxisMisc

	numAxes = iota
)

// ButtonState is the per-button state carried by a Gamepad. previous holds
// the value observed on the prior *dispatched change*, not necessarily the
// prior poll: it only moves when handleButtonEvent actually commits a change.
type ButtonState struct {
	Supported bool
	Current   bool
	previous  bool
}

// Pressed reports whether the button is down right now.
func (s ButtonState) Pressed() bool {
	return s.Current
}

// Released reports the falling edge: down on the previous change, up now.
func (s ButtonState) Released() bool {
	return s.previous && !s.Current
}

// Down reports the button held across the previous change and now.
func (s ButtonState) Down() bool {
	return s.previous && s.Current
}

// AxisState is the per-axis state carried by a Gamepad.
type AxisState struct {
	Supported bool
	Value     float32
	Deadzone  float32
}

// guidLen is the number of hex characters in a wire GUID: 32 lowercase hex
// digits. Wire encodings of a GUID carry one trailing NUL terminator after
// that, which has no Go-string equivalent and is dropped here.
const guidLen = 32

// Gamepad is one slot in a Container's fixed-capacity array. Its Index is
// stable for the gamepad's lifetime: it is never reused by a different
// physical device while this Gamepad remains active, and never changes
// while connected.
type Gamepad struct {
	Index     int
	Name      string
	GUID      string
	Connected bool

	buttons [numButtons]ButtonState
	axes    [numAxes]AxisState

	mapping *gamepaddb.Mapping

	// native is the platform-specific substate: evdev fd/keymap/absmap on
	// Linux, an XInput slot or DirectInput device on Windows, an
	// IOHIDDeviceRef/run-loop sink on macOS, or a browser gamepad index on
	// the web.
	native nativeGamepad

	// prev/next implement the registry's intrusive doubly linked list as
	// indices into registry.gamepads rather than pointers, since a
	// Gamepad's Index must stay stable for its whole lifetime.
	prev, next int
}

// Button returns the current state of a canonical button.
func (g *Gamepad) Button(b Button) ButtonState {
	if b < 0 || int(b) >= numButtons {
		return ButtonState{}
	}
	return g.buttons[b]
}

// ButtonPressed is shorthand for g.Button(b).Pressed().
func (g *Gamepad) ButtonPressed(b Button) bool {
	return g.Button(b).Pressed()
}

// ButtonReleased is shorthand for g.Button(b).Released().
func (g *Gamepad) ButtonReleased(b Button) bool {
	return g.Button(b).Released()
}

// ButtonDown is shorthand for g.Button(b).Down().
func (g *Gamepad) ButtonDown(b Button) bool {
	return g.Button(b).Down()
}

// Axis returns the current state of a canonical axis.
func (g *Gamepad) Axis(a Axis) AxisState {
	if a < 0 || int(a) >= numAxes {
		return AxisState{}
	}
	return g.axes[a]
}

// AxisValue is shorthand for g.Axis(a).Value.
func (g *Gamepad) AxisValue(a Axis) float32 {
	return g.Axis(a).Value
}

// reset zeros all per-gamepad state, as required whenever a slot moves
// between the free and active lists.
func (g *Gamepad) reset() {
	index := g.Index
	prev, next := g.prev, g.next
	*g = Gamepad{Index: index, prev: prev, next: next}
}
