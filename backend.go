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

// backend is the six-operation platform contract each OS target implements.
// Exactly one implementation is compiled in per target OS (platform_linux.go,
// platform_windows.go, platform_darwin.go, platform_js.go), chosen at
// compile time via build tags, one nativeGamepad representation per file.
type backend interface {
	// initPlatform opens driver resources, enumerates currently-connected
	// devices and emits a synthetic Connect for each, via c.connect.
	initPlatform(c *Container) error

	// freePlatform closes all driver resources. It does not release
	// per-gamepad state; the caller's Free does that separately.
	freePlatform(c *Container)

	// pollPlatform drains hot-plug notifications only and emits
	// Connect/Disconnect events. It returns true if anything happened.
	pollPlatform(c *Container) bool

	// updatePlatform reads pending raw input from one gamepad and emits
	// button/axis events. It returns true if anything happened.
	updatePlatform(c *Container, g *Gamepad) bool

	// releasePlatform closes the per-gamepad device handle.
	releasePlatform(g *Gamepad)

	// buttonFallback and axisFallback are the hardcoded native-code to
	// canonical-code translation tables used when the mapping DB has no
	// entry for the device.
	buttonFallback(code uint32) Button
	axisFallback(code uint32) Axis
}

// nativeGamepad is the platform-specific substate a Gamepad carries. Each
// backend defines its own concrete type; Gamepad only needs to close it on
// release.
type nativeGamepad interface {
	close()
}

// deadzoneApply is the shared deadzone rule used by every backend: values
// below the deadzone magnitude report exactly zero, values at or above it
// pass through unchanged.
func deadzoneApply(value, deadzone float32) float32 {
	if value < 0 {
		if -value < deadzone {
			return 0
		}
		return value
	}
	if value < deadzone {
		return 0
	}
	return value
}

// normalizeRange maps a raw integer in [min, max] onto [-1, 1], the
// normalization rule shared by evdev ABS events, DirectInput axes and HID
// elements.
func normalizeRange(value, min, max int64) float32 {
	r := max - min
	if r == 0 {
		return 0
	}
	v := float64(value-min) / float64(r)
	return float32(v*2 - 1)
}

// defaultDeadzone is the deadzone assigned to a newly discovered analog
// axis that isn't one of the dpad hat composites.
const defaultDeadzone = 0.15

// defaultAxisDeadzone picks the deadzone a backend applies to an axis at
// discovery time. The dpad hat composites are digital in practice (their
// normalized value only ever lands near -1, 0 or 1), so a nonzero deadzone
// would just delay reporting a press; every other axis gets the common
// analog-stick/trigger default.
func defaultAxisDeadzone(a Axis) float32 {
	if a == AxisHatDpadLeftRight || a == AxisHatDpadUpDown {
		return 0
	}
	return defaultDeadzone
}
