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

// standardButtonToButton translates the mapping subsystem's restricted
// 15-field StandardButton enum (the only buttons an SDL mapping line can
// name) into this package's full 28-value Button enum.
// The two enums are not declared in the same order, so this is an explicit
// table rather than a numeric cast.
var standardButtonToButton = [...]Button{
	gamepaddb.StandardButtonSouth:         ButtonSouth,
	gamepaddb.StandardButtonEast:          ButtonEast,
	gamepaddb.StandardButtonWest:          ButtonWest,
	gamepaddb.StandardButtonNorth:         ButtonNorth,
	gamepaddb.StandardButtonBack:          ButtonBack,
	gamepaddb.StandardButtonStart:         ButtonStart,
	gamepaddb.StandardButtonGuide:         ButtonGuide,
	gamepaddb.StandardButtonLeftShoulder:  ButtonLeftShoulder,
	gamepaddb.StandardButtonRightShoulder: ButtonRightShoulder,
	gamepaddb.StandardButtonLeftStick:     ButtonLeftStick,
	gamepaddb.StandardButtonRightStick:    ButtonRightStick,
	gamepaddb.StandardButtonDpadUp:        ButtonDpadUp,
	gamepaddb.StandardButtonDpadDown:      ButtonDpadDown,
	gamepaddb.StandardButtonDpadLeft:      ButtonDpadLeft,
	gamepaddb.StandardButtonDpadRight:     ButtonDpadRight,
}

// Axis's first six canonical values (LeftX..RightTrigger) are declared in
// the same order as gamepaddb.StandardAxis, so Axis(sa) is a valid direct
// cast; see resolveAxis in container.go.
