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

//go:build js

package gamepads

import "syscall/js"

// platformName is the string this backend passes to the mapping database.
const platformName = "Web"

func newBackend() backend {
	return &jsBackend{}
}

// jsBackend polls the browser's navigator.getGamepads() snapshot API: the
// Gamepad API has no native hot-plug callback surface in syscall/js terms
// other than gamepadconnected/gamepaddisconnected window events, so this
// backend just re-snapshots the whole array every poll and diffs it
// against what's already tracked, rather than installing listeners. Its
// init/poll/update each map onto exactly one underlying browser call.
type jsBackend struct {
	navigator js.Value
}

func (b *jsBackend) initPlatform(c *Container) error {
	b.navigator = js.Global().Get("navigator")
	b.scan(c)
	return nil
}

func (b *jsBackend) freePlatform(c *Container) {
	b.navigator = js.Value{}
}

func (b *jsBackend) pollPlatform(c *Container) bool {
	return b.scan(c)
}

// scan re-reads navigator.getGamepads(), connecting any browser gamepad
// index not already tracked and disconnecting any tracked index the
// browser no longer reports (a null slot, per the Gamepad API's sparse
// array convention).
func (b *jsBackend) scan(c *Container) bool {
	if b.navigator.IsUndefined() || b.navigator.Get("getGamepads").IsUndefined() {
		return false
	}
	handled := false
	list := b.navigator.Call("getGamepads")
	length := list.Get("length").Int()

	seen := make(map[int]bool, length)
	for i := 0; i < length; i++ {
		jg := list.Index(i)
		if jg.IsNull() || jg.IsUndefined() {
			continue
		}
		seen[i] = true
		if c.reg.findActive(func(g *Gamepad) bool {
			ng, ok := g.native.(*jsGamepad)
			return ok && ng.index == i
		}) != nil {
			continue
		}
		name := jg.Get("id").String()
		guid := jsSyntheticGUID(name)
		gp, err := c.connectGamepad(name, guid)
		if err != nil {
			continue
		}
		gp.native = &jsGamepad{index: i}
		for raw := 0; raw < jsStandardButtonCount; raw++ {
			c.markButtonSupported(gp, uint32(raw))
		}
		for raw := 0; raw < jsStandardAxisCount; raw++ {
			c.markAxisSupported(gp, uint32(raw))
		}
		handled = true
	}

	// Active() snapshots the list: disconnectGamepad unlinks nodes from the
	// active list, which activeForEach does not allow.
	for _, g := range c.Active() {
		ng, ok := g.native.(*jsGamepad)
		if !ok || seen[ng.index] {
			continue
		}
		c.disconnectGamepad(g)
		handled = true
	}
	return handled
}

// updatePlatform re-reads one gamepad's axes/buttons arrays directly from
// the JS object each frame; the Gamepad API has no event-driven interface,
// only this polling snapshot.
func (b *jsBackend) updatePlatform(c *Container, g *Gamepad) bool {
	ng, ok := g.native.(*jsGamepad)
	if !ok {
		return false
	}
	list := b.navigator.Call("getGamepads")
	jg := list.Index(ng.index)
	if jg.IsNull() || jg.IsUndefined() {
		return false
	}

	handled := false

	jsAxes := jg.Get("axes")
	for i := 0; i < jsAxes.Length(); i++ {
		axis := c.resolveAxis(g, uint32(i))
		if axis == AxisUnknown {
			continue
		}
		v := deadzoneApply(float32(jsAxes.Index(i).Float()), g.Axis(axis).Deadzone)
		if v != g.Axis(axis).Value {
			c.handleAxisEvent(g, axis, v)
			handled = true
		}
	}

	jsButtons := jg.Get("buttons")
	for i := 0; i < jsButtons.Length(); i++ {
		btn := c.resolveButton(g, uint32(i))
		if btn == ButtonUnknown {
			continue
		}
		pressed := jsButtons.Index(i).Get("pressed").Bool()
		if pressed != g.Button(btn).Current {
			c.handleButtonEvent(g, btn, pressed)
			handled = true
		}
	}

	return handled
}

func (b *jsBackend) releasePlatform(g *Gamepad) {}

// buttonFallback and axisFallback follow the "standard" Gamepad API layout
// (https://www.w3.org/TR/gamepad/#remapping), which every major browser
// normalizes recognized controllers to: axis 0/1 left stick, 2/3 right
// stick; button 0/1/2/3 face buttons, 4/5 shoulders, 6/7 triggers, 8/9
// back/start, 10/11 stick clicks, 12-15 dpad.
// jsStandardButtons is the full "standard" Gamepad API button table;
// jsStandardButtonCount and jsStandardAxisCount are how many of its leading
// entries a connecting gamepad gets marked Supported for up front.
var jsStandardButtons = [...]Button{
	ButtonSouth, ButtonEast, ButtonWest, ButtonNorth,
	ButtonLeftShoulder, ButtonRightShoulder,
	ButtonLeftTrigger, ButtonRightTrigger,
	ButtonBack, ButtonStart,
	ButtonLeftStick, ButtonRightStick,
	ButtonDpadUp, ButtonDpadDown, ButtonDpadLeft, ButtonDpadRight,
}

const jsStandardButtonCount = len(jsStandardButtons)
const jsStandardAxisCount = 4

func (b *jsBackend) buttonFallback(code uint32) Button {
	if int(code) < len(jsStandardButtons) {
		return jsStandardButtons[code]
	}
	return ButtonUnknown
}

func (b *jsBackend) axisFallback(code uint32) Axis {
	if code <= uint32(AxisRightY) {
		return Axis(code)
	}
	return AxisUnknown
}

type jsGamepad struct {
	index int
}

func (ng *jsGamepad) close() {}

func jsSyntheticGUID(name string) string {
	bs := []byte(name)
	if len(bs) < 12 {
		bs = append(bs, make([]byte, 12-len(bs))...)
	}
	return "05000000" + hexByte(bs[0]) + hexByte(bs[1]) + hexByte(bs[2]) + hexByte(bs[3]) +
		hexByte(bs[4]) + hexByte(bs[5]) + hexByte(bs[6]) + hexByte(bs[7]) +
		hexByte(bs[8]) + hexByte(bs[9]) + hexByte(bs[10]) + hexByte(bs[11])
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}
