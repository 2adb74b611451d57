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

//go:build !linux && !windows && !darwin && !js

package gamepads

// platformName is reported on targets with no real input backend.
const platformName = "Unknown"

func newBackend() backend {
	return &nullBackend{}
}

// nullBackend backs unsupported GOOS targets: Init succeeds with zero
// gamepads rather than failing the build, so this package stays usable as
// a dependency on platforms nobody has written a backend for yet.
type nullBackend struct{}

func (nullBackend) initPlatform(c *Container) error       { return nil }
func (nullBackend) freePlatform(c *Container)              {}
func (nullBackend) pollPlatform(c *Container) bool         { return false }
func (nullBackend) updatePlatform(c *Container, g *Gamepad) bool { return false }
func (nullBackend) releasePlatform(g *Gamepad)              {}
func (nullBackend) buttonFallback(code uint32) Button       { return ButtonUnknown }
func (nullBackend) axisFallback(code uint32) Axis           { return AxisUnknown }
