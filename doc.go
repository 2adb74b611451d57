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

// Package gamepads is a cross-platform gamepad input library. It discovers
// gamepads, tracks their connection state, polls raw device input, and
// normalizes vendor-specific button and axis indices into a canonical
// abstract controller model using an SDL-compatible mapping database.
//
// Results are delivered either as a pollable state snapshot (read the
// current Gamepad directly) or as a queued event stream with callbacks
// (see Container.Poll, Container.CheckEvent, Container.SetPressCallback, etc).
//
// The library is single-threaded and cooperative: every exported function
// must be called from the same goroutine, there is no internal locking, and
// no call ever blocks.
package gamepads
