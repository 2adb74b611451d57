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

var buttonNames = [numButtons]string{
	ButtonSouth:          "South Button",
	ButtonEast:           "East Button",
	ButtonWest:           "West Button",
	ButtonNorth:          "North Button",
	ButtonBack:           "Back Button",
	ButtonGuide:          "Guide Button",
	ButtonStart:          "Start Button",
	ButtonLeftStick:      "Left Stick Button",
	ButtonRightStick:     "Right Stick Button",
	ButtonLeftShoulder:   "Left Shoulder Button",
	ButtonRightShoulder:  "Right Shoulder Button",
	ButtonDpadLeft:       "D-Pad Left Button",
	ButtonDpadRight:      "D-Pad Right Button",
	ButtonDpadUp:         "D-Pad Up Button",
	ButtonDpadDown:       "D-Pad Down Button",
	ButtonLeftTrigger:    "Left Trigger Button",
	ButtonRightTrigger:   "Right Trigger Button",
	ButtonMisc1:          "Misc Button 1",
	ButtonRightPaddle1:   "Right Paddle Button 1",
	ButtonLeftPaddle1:    "Left Paddle Button 1",
	ButtonRightPaddle2:   "Right Paddle Button 2",
	ButtonLeftPaddle2:    "Left Paddle Button 2",
	ButtonTouchpad:       "Touchpad Button",
	ButtonMisc2:          "Misc Button 2",
	ButtonMisc3:          "Misc Button 3",
	ButtonMisc4:          "Misc Button 4",
	ButtonMisc5:          "Misc Button 5",
	ButtonMisc6:          "Misc Button 6",
}

var axisNames = [numAxes]string{
	AxisLeftX:            "Left X Axis",
	AxisLeftY:            "Left Y Axis",
	AxisRightX:           "Right X Axis",
	AxisRightY:           "Right Y Axis",
	AxisLeftTrigger:      "Left Trigger Axis",
	AxisRightTrigger:     "Right Trigger Axis",
	AxisHatDpadLeftRight: "D-Pad Left/Right Axis",
	AxisHatDpadUpDown:    "D-Pad Up/Down Axis",
	AxisThrottle:         "Throttle Axis",
	AxisRudder:           "Rudder Axis",
	AxisWheel:            "Wheel Axis",
	AxisGas:              "Gas Axis",
	AxisBrake:            "Brake Axis",
	AxisHat1X:            "Hat 1 X Axis",
	AxisHat1Y:            "Hat 1 Y Axis",
	AxisHat2X:            "Hat 2 X Axis",
	AxisHat2Y:            "Hat 2 Y Axis",
	AxisHat3X:            "Hat 3 X Axis",
	AxisHat3Y:            "Hat 3 Y Axis",
	AxisPressure:         "Pressure Axis",
	AxisDistance:         "Distance Axis",
	AxisTiltX:            "Tilt X Axis",
	AxisTiltY:            "Tilt Y Axis",
	AxisToolWidth:        "Tool Width Axis",
	AxisVolume:           "Volume Axis",
	AxisProfile:          "Profile Axis",
	AxisMisc:             "Misc Axis",
}

// ButtonName returns a fixed, human-readable label for b, e.g.
// "South Button". Unknown or out-of-range values return "Unknown Button".
func ButtonName(b Button) string {
	if b < 0 || int(b) >= numButtons {
		return "Unknown Button"
	}
	return buttonNames[b]
}

// AxisName returns a fixed, human-readable label for a, e.g. "Left X Axis".
// Unknown or out-of-range values return "Unknown Axis".
func AxisName(a Axis) string {
	if a < 0 || int(a) >= numAxes {
		return "Unknown Axis"
	}
	return axisNames[a]
}
