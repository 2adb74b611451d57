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

//go:build darwin

package gamepads

// #cgo LDFLAGS: -framework CoreFoundation -framework IOKit
//
// #include <IOKit/hid/IOHIDLib.h>
//
// static CFStringRef gamepadsCFStringVendorIDKey() { return CFSTR(kIOHIDVendorIDKey); }
// static CFStringRef gamepadsCFStringProductIDKey() { return CFSTR(kIOHIDProductIDKey); }
// static CFStringRef gamepadsCFStringVersionNumberKey() { return CFSTR(kIOHIDVersionNumberKey); }
// static CFStringRef gamepadsCFStringProductKey() { return CFSTR(kIOHIDProductKey); }
// static CFStringRef gamepadsCFStringUsagePageKey() { return CFSTR(kIOHIDDeviceUsagePageKey); }
// static CFStringRef gamepadsCFStringUsageKey() { return CFSTR(kIOHIDDeviceUsageKey); }
//
// void gamepadsMatchingCallback(void *ctx, IOReturn res, void *sender, IOHIDDeviceRef device);
// void gamepadsRemovalCallback(void *ctx, IOReturn res, void *sender, IOHIDDeviceRef device);
import "C"

import (
	"fmt"
	"runtime/cgo"
	"sort"
	"unsafe"
)

// platformName is the string this backend passes to the mapping database.
const platformName = "Mac OS X"

func newBackend() backend {
	return &darwinBackend{}
}

// darwinBackend wraps a single IOHIDManager: matching-dictionary
// construction, a run loop pump and //export-based matching/removal
// callbacks. The callbacks reach a specific Container through a cgo.Handle
// passed as the IOKit context pointer, rather than a package-level global,
// so multiple Containers never collide.
type darwinBackend struct {
	hidManager C.IOHIDManagerRef
	handle     cgo.Handle
}

func (b *darwinBackend) initPlatform(c *Container) error {
	b.handle = cgo.NewHandle(c)

	var dicts []unsafe.Pointer
	const hidPageGenericDesktop = 0x01
	for _, usage := range []uint32{0x04 /* Joystick */, 0x05 /* GamePad */, 0x08 /* MultiAxisController */} {
		page := uint32(hidPageGenericDesktop)
		pageRef := C.CFNumberCreate(C.kCFAllocatorDefault, C.kCFNumberSInt32Type, unsafe.Pointer(&page))
		if pageRef == 0 {
			return fmt.Errorf("gamepads: CFNumberCreate (page) failed")
		}
		defer C.CFRelease(C.CFTypeRef(pageRef))

		u := usage
		usageRef := C.CFNumberCreate(C.kCFAllocatorDefault, C.kCFNumberSInt32Type, unsafe.Pointer(&u))
		if usageRef == 0 {
			return fmt.Errorf("gamepads: CFNumberCreate (usage) failed")
		}
		defer C.CFRelease(C.CFTypeRef(usageRef))

		keys := []unsafe.Pointer{
			unsafe.Pointer(C.gamepadsCFStringUsagePageKey()),
			unsafe.Pointer(C.gamepadsCFStringUsageKey()),
		}
		values := []unsafe.Pointer{unsafe.Pointer(pageRef), unsafe.Pointer(usageRef)}

		dict := C.CFDictionaryCreate(C.kCFAllocatorDefault, &keys[0], &values[0], C.CFIndex(len(keys)),
			&C.kCFTypeDictionaryKeyCallBacks, &C.kCFTypeDictionaryValueCallBacks)
		if dict == 0 {
			return fmt.Errorf("gamepads: CFDictionaryCreate failed")
		}
		defer C.CFRelease(C.CFTypeRef(unsafe.Pointer(dict)))

		dicts = append(dicts, unsafe.Pointer(dict))
	}

	matching := C.CFArrayCreate(C.kCFAllocatorDefault, &dicts[0], C.CFIndex(len(dicts)), &C.kCFTypeArrayCallBacks)
	if matching == 0 {
		return fmt.Errorf("gamepads: CFArrayCreate failed")
	}
	defer C.CFRelease(C.CFTypeRef(matching))

	b.hidManager = C.IOHIDManagerCreate(C.kCFAllocatorDefault, C.kIOHIDOptionsTypeNone)
	if C.IOHIDManagerOpen(b.hidManager, C.kIOHIDOptionsTypeNone) != C.kIOReturnSuccess {
		return fmt.Errorf("gamepads: IOHIDManagerOpen failed")
	}

	ctx := unsafe.Pointer(uintptr(b.handle))
	C.IOHIDManagerSetDeviceMatchingMultiple(b.hidManager, matching)
	C.IOHIDManagerRegisterDeviceMatchingCallback(b.hidManager, C.IOHIDDeviceCallback(C.gamepadsMatchingCallback), ctx)
	C.IOHIDManagerRegisterDeviceRemovalCallback(b.hidManager, C.IOHIDDeviceCallback(C.gamepadsRemovalCallback), ctx)
	C.IOHIDManagerScheduleWithRunLoop(b.hidManager, C.CFRunLoopGetMain(), C.kCFRunLoopDefaultMode)

	// Run the loop once so already-attached gamepads get their matching
	// callback before Init returns.
	C.CFRunLoopRunInMode(C.kCFRunLoopDefaultMode, 0, 0)
	return nil
}

func (b *darwinBackend) freePlatform(c *Container) {
	if b.hidManager != 0 {
		C.IOHIDManagerClose(b.hidManager, C.kIOHIDOptionsTypeNone)
		b.hidManager = 0
	}
	if b.handle != 0 {
		b.handle.Delete()
	}
}

// pollPlatform just pumps the run loop; IOKit's matching/removal callbacks
// do the actual connect/disconnect work asynchronously from this pump.
func (b *darwinBackend) pollPlatform(c *Container) bool {
	C.CFRunLoopRunInMode(C.kCFRunLoopDefaultMode, 0, 0)
	return false
}

// updatePlatform reads every tracked HID element's current value and
// dispatches changes through the container's event pipeline.
func (b *darwinBackend) updatePlatform(c *Container, g *Gamepad) bool {
	ng, ok := g.native.(*darwinGamepad)
	if !ok {
		return false
	}
	handled := false

	for i := range ng.axes {
		e := &ng.axes[i]
		raw := ng.elementValue(e)
		if raw < e.minimum {
			e.minimum = raw
		}
		if raw > e.maximum {
			e.maximum = raw
		}
		v := normalizeRange(int64(raw), int64(e.minimum), int64(e.maximum))
		axis := c.resolveAxis(g, uint32(i))
		if axis == AxisUnknown {
			continue
		}
		v = deadzoneApply(v, g.Axis(axis).Deadzone)
		if v != g.Axis(axis).Value {
			c.handleAxisEvent(g, axis, v)
			handled = true
		}
	}

	for i := range ng.buttons {
		pressed := ng.elementValue(&ng.buttons[i]) > 0
		btn := c.resolveButton(g, uint32(i))
		if btn == ButtonUnknown {
			continue
		}
		if pressed != g.Button(btn).Current {
			c.handleButtonEvent(g, btn, pressed)
			handled = true
		}
	}

	for i := range ng.hats {
		state := ng.elementValue(&ng.hats[i])
		lr, ud := hatAxisValues(state)
		if axis := c.resolveAxis(g, uint32(1000+2*i)); axis != AxisUnknown && lr != g.Axis(axis).Value {
			c.handleAxisEvent(g, axis, lr)
			handled = true
		}
		if axis := c.resolveAxis(g, uint32(1000+2*i+1)); axis != AxisUnknown && ud != g.Axis(axis).Value {
			c.handleAxisEvent(g, axis, ud)
			handled = true
		}
	}

	return handled
}

// hatAxisValues converts an 8-position HID hat-switch reading (0=up,
// clockwise, 8=centered/out-of-range) into left/right and up/down axis
// values, the same composite this package exposes as AxisHatDpadLeftRight
// and AxisHatDpadUpDown.
func hatAxisValues(state int) (lr, ud float32) {
	switch state {
	case 0:
		return 0, -1
	case 1:
		return 1, -1
	case 2:
		return 1, 0
	case 3:
		return 1, 1
	case 4:
		return 0, 1
	case 5:
		return -1, 1
	case 6:
		return -1, 0
	case 7:
		return -1, -1
	default:
		return 0, 0
	}
}

func (b *darwinBackend) releasePlatform(g *Gamepad) {
	if ng, ok := g.native.(*darwinGamepad); ok {
		ng.close()
	}
}

// buttonFallback/axisFallback have no hardcoded layout: IOHIDManager
// element enumeration order is device-specific, exactly like evdev on
// Linux, so only the mapping database can translate it meaningfully.
func (b *darwinBackend) buttonFallback(code uint32) Button { return ButtonUnknown }
func (b *darwinBackend) axisFallback(code uint32) Axis     { return AxisUnknown }

// hidElement is one HID input element this backend tracks: its IOKit
// reference plus the logical range needed to normalize raw values.
type hidElement struct {
	native  C.IOHIDElementRef
	usage   int
	minimum int
	maximum int
}

type hidElements []hidElement

func (e hidElements) Len() int      { return len(e) }
func (e hidElements) Less(i, j int) bool {
	return e[i].usage < e[j].usage
}
func (e hidElements) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

// darwinGamepad is the native substate for one IOHIDDevice.
type darwinGamepad struct {
	device  C.IOHIDDeviceRef
	axes    hidElements
	buttons hidElements
	hats    hidElements
}

func (ng *darwinGamepad) close() {
	ng.device = 0
}

func (ng *darwinGamepad) elementValue(e *hidElement) int {
	if ng.device == 0 {
		return 0
	}
	var valueRef C.IOHIDValueRef
	if C.IOHIDDeviceGetValue(ng.device, e.native, &valueRef) == C.kIOReturnSuccess {
		return int(C.IOHIDValueGetIntegerValue(valueRef))
	}
	return 0
}

//export gamepadsMatchingCallback
func gamepadsMatchingCallback(ctx unsafe.Pointer, res C.IOReturn, sender unsafe.Pointer, device C.IOHIDDeviceRef) {
	c, ok := cgo.Handle(uintptr(ctx)).Value().(*Container)
	if !ok {
		return
	}
	if c.reg.findActive(func(g *Gamepad) bool {
		ng, ok := g.native.(*darwinGamepad)
		return ok && ng.device == device
	}) != nil {
		return
	}

	name := "Unknown"
	if prop := C.IOHIDDeviceGetProperty(device, C.gamepadsCFStringProductKey()); prop != 0 {
		var cstr [256]C.char
		C.CFStringGetCString(C.CFStringRef(prop), &cstr[0], C.CFIndex(len(cstr)), C.kCFStringEncodingUTF8)
		name = C.GoString(&cstr[0])
	}

	var vendor, product, version uint32
	readNumberProp(device, C.gamepadsCFStringVendorIDKey(), &vendor)
	readNumberProp(device, C.gamepadsCFStringProductIDKey(), &product)
	readNumberProp(device, C.gamepadsCFStringVersionNumberKey(), &version)

	guid := darwinGUID(vendor, product, version, name)

	gp, err := c.connectGamepad(name, guid)
	if err != nil {
		return
	}
	ng := &darwinGamepad{device: device}
	gp.native = ng

	elems := C.IOHIDDeviceCopyMatchingElements(device, 0, C.kIOHIDOptionsTypeNone)
	defer C.CFRelease(C.CFTypeRef(elems))

	for i := C.CFIndex(0); i < C.CFArrayGetCount(elems); i++ {
		native := (C.IOHIDElementRef)(C.CFArrayGetValueAtIndex(elems, i))
		if C.CFGetTypeID(C.CFTypeRef(native)) != C.IOHIDElementGetTypeID() {
			continue
		}
		typ := C.IOHIDElementGetType(native)
		if typ != C.kIOHIDElementTypeInput_Axis && typ != C.kIOHIDElementTypeInput_Button && typ != C.kIOHIDElementTypeInput_Misc {
			continue
		}

		usage := int(C.IOHIDElementGetUsage(native))
		page := int(C.IOHIDElementGetUsagePage(native))
		elem := hidElement{
			native:  native,
			usage:   usage,
			minimum: int(C.IOHIDElementGetLogicalMin(native)),
			maximum: int(C.IOHIDElementGetLogicalMax(native)),
		}

		const (
			pageGenericDesktop = 0x01
			pageSimulation     = 0x02
			pageButton         = 0x09
			pageConsumer       = 0x0C

			usageX, usageY, usageZ       = 0x30, 0x31, 0x32
			usageRx, usageRy, usageRz    = 0x33, 0x34, 0x35
			usageSlider, usageDial       = 0x36, 0x37
			usageWheel                   = 0x38
			usageHatswitch               = 0x39
			usageDPadUp, usageDPadDown   = 0x90, 0x91
			usageDPadRight, usageDPadLeft = 0x93, 0x92
			usageSysMainMenu             = 0x85
			usageSelect, usageStart      = 0x22, 0x23
			usageAccelerator, usageBrake = 0xC4, 0xC5
			usageThrottle, usageRudder   = 0xBB, 0xBA
			usageSteering                = 0xC8
		)

		switch page {
		case pageGenericDesktop:
			switch usage {
			case usageX, usageY, usageZ, usageRx, usageRy, usageRz, usageSlider, usageDial, usageWheel:
				ng.axes = append(ng.axes, elem)
			case usageHatswitch:
				ng.hats = append(ng.hats, elem)
			case usageDPadUp, usageDPadRight, usageDPadDown, usageDPadLeft, usageSysMainMenu, usageSelect, usageStart:
				ng.buttons = append(ng.buttons, elem)
			}
		case pageSimulation:
			switch usage {
			case usageAccelerator, usageBrake, usageThrottle, usageRudder, usageSteering:
				ng.axes = append(ng.axes, elem)
			}
		case pageButton, pageConsumer:
			ng.buttons = append(ng.buttons, elem)
		}
	}

	sort.Stable(ng.axes)
	sort.Stable(ng.buttons)
	sort.Stable(ng.hats)

	for i := range ng.axes {
		c.markAxisSupported(gp, uint32(i))
	}
	for i := range ng.buttons {
		c.markButtonSupported(gp, uint32(i))
	}
	for i := range ng.hats {
		c.markAxisSupported(gp, uint32(1000+2*i))
		c.markAxisSupported(gp, uint32(1000+2*i+1))
	}
}

//export gamepadsRemovalCallback
func gamepadsRemovalCallback(ctx unsafe.Pointer, res C.IOReturn, sender unsafe.Pointer, device C.IOHIDDeviceRef) {
	c, ok := cgo.Handle(uintptr(ctx)).Value().(*Container)
	if !ok {
		return
	}
	if gp := c.reg.findActive(func(g *Gamepad) bool {
		ng, ok := g.native.(*darwinGamepad)
		return ok && ng.device == device
	}); gp != nil {
		c.disconnectGamepad(gp)
	}
}

func readNumberProp(device C.IOHIDDeviceRef, key C.CFStringRef, out *uint32) {
	if prop := C.IOHIDDeviceGetProperty(device, key); prop != 0 {
		C.CFNumberGetValue(C.CFNumberRef(prop), C.kCFNumberSInt32Type, unsafe.Pointer(out))
	}
}

func darwinGUID(vendor, product, version uint32, name string) string {
	if vendor != 0 && product != 0 {
		return fmt.Sprintf("03000000%02x%02x0000%02x%02x0000%02x%02x0000",
			byte(vendor), byte(vendor>>8),
			byte(product), byte(product>>8),
			byte(version), byte(version>>8))
	}
	bs := []byte(name)
	if len(bs) < 12 {
		bs = append(bs, make([]byte, 12-len(bs))...)
	}
	return fmt.Sprintf("05000000%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x",
		bs[0], bs[1], bs[2], bs[3], bs[4], bs[5], bs[6], bs[7], bs[8], bs[9], bs[10], bs[11])
}
