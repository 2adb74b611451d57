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

//go:build windows

package gamepads

import (
	"fmt"
	"syscall"
	"unsafe"
)

// platformName is the string this backend passes to the mapping database.
const platformName = "Windows"

func newBackend() backend {
	return &windowsBackend{}
}

// --- XInput ---------------------------------------------------------------

var (
	xinputDLL       = loadXInputDLL()
	xInputGetState  = xinputDLL.NewProc("XInputGetState")
	xInputEnable    = xinputDLL.NewProc("XInputEnable")
)

// loadXInputDLL tries the newest XInput redistributable first, the same
// fallback chain ebiten and most Go game libraries use, since not every
// Windows install carries xinput1_4.dll.
func loadXInputDLL() *syscall.LazyDLL {
	for _, name := range []string{"xinput1_4.dll", "xinput1_3.dll", "xinput9_1_0.dll"} {
		dll := syscall.NewLazyDLL(name)
		if dll.Load() == nil {
			return dll
		}
	}
	return syscall.NewLazyDLL("xinput1_4.dll")
}

const xUserMaxCount = 4

// xinputAxisCount is the six axes update() always reads off an XInput
// state packet: left stick X/Y, right stick X/Y, left/right trigger.
const xinputAxisCount = 6

const errorDeviceNotConnected = 1167

type xinputGamepadState struct {
	wButtons      uint16
	bLeftTrigger  byte
	bRightTrigger byte
	sThumbLX      int16
	sThumbLY      int16
	sThumbRX      int16
	sThumbRY      int16
}

type xinputState struct {
	dwPacketNumber uint32
	gamepad        xinputGamepadState
}

// xinputButtonBits lists wButtons bit values in the order this backend's
// fallback table assigns them raw codes 0..13. XInput has a single
// hardcoded layout, unlike Linux's per-device evdev indices.
var xinputButtonBits = [...]uint16{
	0x0001, // DPAD_UP
	0x0002, // DPAD_DOWN
	0x0004, // DPAD_LEFT
	0x0008, // DPAD_RIGHT
	0x0010, // START
	0x0020, // BACK
	0x0040, // LEFT_THUMB
	0x0080, // RIGHT_THUMB
	0x0100, // LEFT_SHOULDER
	0x0200, // RIGHT_SHOULDER
	0x1000, // A
	0x2000, // B
	0x4000, // X
	0x8000, // Y
}

var xinputFallbackButtons = [len(xinputButtonBits)]Button{
	ButtonDpadUp, ButtonDpadDown, ButtonDpadLeft, ButtonDpadRight,
	ButtonStart, ButtonBack, ButtonLeftStick, ButtonRightStick,
	ButtonLeftShoulder, ButtonRightShoulder,
	ButtonSouth, ButtonEast, ButtonWest, ButtonNorth,
}

// --- DirectInput8 ------------------------------------------------------
//
// Raw IDirectInput8/IDirectInputDevice8 vtable dispatch via syscall and
// unsafe, grounded directly on other_examples' gonutz/di8 `device_windows.go`
// (same field layout and syscall.SyscallN calling convention for the
// non-IDispatch COM interfaces DirectInput exposes). This repo declares its
// own minimal DIDATAFORMAT rather than importing di8 wholesale, since only
// enumeration + polling is needed, not the force-feedback surface.

type winGUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

type comVtblHeader struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

type iDirectInput8Vtbl struct {
	comVtblHeader
	CreateDevice   uintptr
	EnumDevices    uintptr
	GetDeviceStatus uintptr
	RunControlPanel uintptr
	Initialize     uintptr
}

type iDirectInput8 struct {
	vtbl *iDirectInput8Vtbl
}

type iDirectInputDevice8Vtbl struct {
	comVtblHeader
	GetCapabilities      uintptr
	EnumObjects          uintptr
	GetProperty          uintptr
	SetProperty          uintptr
	Acquire              uintptr
	Unacquire            uintptr
	GetDeviceState       uintptr
	GetDeviceData        uintptr
	SetDataFormat        uintptr
	SetEventNotification uintptr
	SetCooperativeLevel  uintptr
	GetObjectInfo        uintptr
	GetDeviceInfo        uintptr
	RunControlPanel      uintptr
	Initialize           uintptr
}

type iDirectInputDevice8 struct {
	vtbl *iDirectInputDevice8Vtbl
}

func (d *iDirectInputDevice8) Release() {
	syscall.SyscallN(d.vtbl.Release, uintptr(unsafe.Pointer(d)))
}

func (d *iDirectInputDevice8) SetDataFormat(format *diDataFormat) int32 {
	r, _, _ := syscall.SyscallN(d.vtbl.SetDataFormat, uintptr(unsafe.Pointer(d)), uintptr(unsafe.Pointer(format)))
	return int32(r)
}

func (d *iDirectInputDevice8) SetCooperativeLevel(hwnd uintptr, flags uint32) int32 {
	r, _, _ := syscall.SyscallN(d.vtbl.SetCooperativeLevel, uintptr(unsafe.Pointer(d)), hwnd, uintptr(flags))
	return int32(r)
}

func (d *iDirectInputDevice8) Acquire() int32 {
	r, _, _ := syscall.SyscallN(d.vtbl.Acquire, uintptr(unsafe.Pointer(d)))
	return int32(r)
}

func (d *iDirectInputDevice8) Unacquire() int32 {
	r, _, _ := syscall.SyscallN(d.vtbl.Unacquire, uintptr(unsafe.Pointer(d)))
	return int32(r)
}

func (d *iDirectInputDevice8) GetDeviceState(size uintptr, dst unsafe.Pointer) int32 {
	r, _, _ := syscall.SyscallN(d.vtbl.GetDeviceState, uintptr(unsafe.Pointer(d)), size, uintptr(dst))
	return int32(r)
}

const (
	didftAbsAxis     = 0x00000002
	didftButton      = 0x0000000C
	didftPov         = 0x00000010
	didftAnyInstance = 0x00FFFF00
	didftOptional    = 0x80000000
)

type diObjectDataFormat struct {
	pguid  *winGUID
	dwOfs  uint32
	dwType uint32
	dwFlags uint32
}

type diDataFormat struct {
	dwSize     uint32
	dwObjSize  uint32
	dwFlags    uint32
	dwDataSize uint32
	dwNumObjs  uint32
	rgodf      *diObjectDataFormat
}

// diJoyState is the fixed-layout struct this backend's own DIDATAFORMAT
// describes: 6 axes, 4 POV hats, 32 buttons, matching classic DIJOYSTATE.
type diJoyState struct {
	lX, lY, lZ    int32
	lRx, lRy, lRz int32
	rglSlider     [2]int32
	rgdwPOV       [4]uint32
	rgbButtons    [32]byte
}

var diJoyObjects = buildDIJoyObjects()

func buildDIJoyObjects() []diObjectDataFormat {
	offsetOf := func(field string) uint32 {
		var s diJoyState
		switch field {
		case "lX":
			return uint32(uintptr(unsafe.Pointer(&s.lX)) - uintptr(unsafe.Pointer(&s)))
		case "lY":
			return uint32(uintptr(unsafe.Pointer(&s.lY)) - uintptr(unsafe.Pointer(&s)))
		case "lZ":
			return uint32(uintptr(unsafe.Pointer(&s.lZ)) - uintptr(unsafe.Pointer(&s)))
		case "lRx":
			return uint32(uintptr(unsafe.Pointer(&s.lRx)) - uintptr(unsafe.Pointer(&s)))
		case "lRy":
			return uint32(uintptr(unsafe.Pointer(&s.lRy)) - uintptr(unsafe.Pointer(&s)))
		case "lRz":
			return uint32(uintptr(unsafe.Pointer(&s.lRz)) - uintptr(unsafe.Pointer(&s)))
		}
		return 0
	}
	objs := []diObjectDataFormat{
		{nil, offsetOf("lX"), didftAbsAxis | didftAnyInstance, 0},
		{nil, offsetOf("lY"), didftAbsAxis | didftAnyInstance, 0},
		{nil, offsetOf("lZ"), didftAbsAxis | didftAnyInstance | didftOptional, 0},
		{nil, offsetOf("lRx"), didftAbsAxis | didftAnyInstance | didftOptional, 0},
		{nil, offsetOf("lRy"), didftAbsAxis | didftAnyInstance | didftOptional, 0},
		{nil, offsetOf("lRz"), didftAbsAxis | didftAnyInstance | didftOptional, 0},
	}
	var s diJoyState
	povBase := uint32(uintptr(unsafe.Pointer(&s.rgdwPOV)) - uintptr(unsafe.Pointer(&s)))
	for i := 0; i < 4; i++ {
		objs = append(objs, diObjectDataFormat{nil, povBase + uint32(i)*4, didftPov | didftAnyInstance | didftOptional, 0})
	}
	btnBase := uint32(uintptr(unsafe.Pointer(&s.rgbButtons)) - uintptr(unsafe.Pointer(&s)))
	for i := 0; i < 32; i++ {
		objs = append(objs, diObjectDataFormat{nil, btnBase + uint32(i), didftButton | didftAnyInstance | didftOptional, 0})
	}
	return objs
}

func diJoystickFormat() *diDataFormat {
	var s diJoyState
	return &diDataFormat{
		dwSize:     uint32(unsafe.Sizeof(diDataFormat{})),
		dwObjSize:  uint32(unsafe.Sizeof(diObjectDataFormat{})),
		dwFlags:    1, // DIDF_ABSAXIS
		dwDataSize: uint32(unsafe.Sizeof(s)),
		dwNumObjs:  uint32(len(diJoyObjects)),
		rgodf:      &diJoyObjects[0],
	}
}

// --- Backend ----------------------------------------------------------

type windowsBackend struct {
	xinputConnected [xUserMaxCount]bool
	di8             *iDirectInput8
	diDevices       []*diNativeGamepad
}

func (b *windowsBackend) initPlatform(c *Container) error {
	if err := xinputDLL.Load(); err == nil {
		_, _, _ = xInputEnable.Call(1)
	}
	// DirectInput8 instance creation (DirectInput8Create) needs an HMODULE
	// and is deliberately best-effort: plenty of Windows installs only have
	// XInput-class controllers, and a missing dinput8.dll must not fail
	// Init. Partial availability is not an error.
	b.di8 = createDirectInput8()
	if b.di8 != nil {
		b.enumerateDirectInputDevices(c)
	}
	return nil
}

const diDevTypeJoystick = 4
const diEdfAttachedOnly = 1

// enumerateDirectInputDevices walks every attached joystick-class device
// via IDirectInput8::EnumDevices, opening and acquiring each one it can.
// DirectInput is the fallback path for non-XInput controllers. Devices
// that cannot be created or fail to set a data format are skipped rather
// than aborting the whole scan; the result of Acquire is not checked.
func (b *windowsBackend) enumerateDirectInputDevices(c *Container) {
	var found []winGUID
	cb := syscall.NewCallback(func(instance uintptr, _ uintptr) uintptr {
		inst := (*diDeviceInstance)(unsafe.Pointer(instance))
		found = append(found, inst.guidInstance)
		return 1 // DIENUM_CONTINUE
	})
	syscall.SyscallN(b.di8.vtbl.EnumDevices, uintptr(unsafe.Pointer(b.di8)),
		uintptr(diDevTypeJoystick), cb, 0, uintptr(diEdfAttachedOnly))

	for _, guid := range found {
		dev := b.openDirectInputDevice(guid)
		if dev == nil {
			continue
		}
		name, sdlGUID := directInputIdentity(guid)
		gp, err := c.connectGamepad(name, sdlGUID)
		if err != nil {
			dev.Release()
			continue
		}
		gp.native = &diNativeGamepad{dev: dev}
		b.diDevices = append(b.diDevices, gp.native.(*diNativeGamepad))
		for i := 0; i < 6; i++ {
			c.markAxisSupported(gp, uint32(1000+i))
		}
		for i := 0; i < 32; i++ {
			c.markButtonSupported(gp, uint32(1000+i))
		}
	}
}

// diDeviceInstance mirrors only the leading fields of DIDEVICEINSTANCEW
// this backend needs: size, instance GUID and product GUID.
type diDeviceInstance struct {
	dwSize        uint32
	guidInstance  winGUID
	guidProduct   winGUID
}

func (b *windowsBackend) openDirectInputDevice(guid winGUID) *iDirectInputDevice8 {
	var dev *iDirectInputDevice8
	r, _, _ := syscall.SyscallN(b.di8.vtbl.CreateDevice, uintptr(unsafe.Pointer(b.di8)),
		uintptr(unsafe.Pointer(&guid)), uintptr(unsafe.Pointer(&dev)), 0)
	if r != 0 || dev == nil {
		return nil
	}
	if dev.SetDataFormat(diJoystickFormat()) != 0 {
		dev.Release()
		return nil
	}
	dev.Acquire()
	return dev
}

// directInputIdentity synthesizes a name and SDL-format GUID from a
// DirectInput instance GUID, following the mapping database's own
// normalization for this platform (Windows GUIDs fold the trailing
// "PIDVID" suffix).
func directInputIdentity(guid winGUID) (string, string) {
	raw := fmt.Sprintf("%08x0000%04x0000%04x0000%02x%02x%02x%02x%02x%02x%02x%02x",
		guid.Data1, guid.Data2, guid.Data3,
		guid.Data4[0], guid.Data4[1], guid.Data4[2], guid.Data4[3],
		guid.Data4[4], guid.Data4[5], guid.Data4[6], guid.Data4[7])
	return "DirectInput Joystick", raw
}

func (b *windowsBackend) freePlatform(c *Container) {
	for _, d := range b.diDevices {
		d.close()
	}
	b.diDevices = nil
	if b.di8 != nil {
		syscall.SyscallN(b.di8.vtbl.Release, uintptr(unsafe.Pointer(b.di8)))
		b.di8 = nil
	}
}

// pollPlatform checks XInput slot occupancy transitions and only emits
// Connect or Disconnect; state dispatch happens in updatePlatform.
// DirectInput devices are enumerated once, in initPlatform; DirectInput
// devices attached or removed later are not detected here.
func (b *windowsBackend) pollPlatform(c *Container) bool {
	handled := false
	for slot := uint32(0); slot < xUserMaxCount; slot++ {
		var state xinputState
		r, _, _ := xInputGetState.Call(uintptr(slot), uintptr(unsafe.Pointer(&state)))
		connected := r == 0
		if connected == b.xinputConnected[slot] {
			continue
		}
		b.xinputConnected[slot] = connected
		if connected {
			name := fmt.Sprintf("XInput Controller %d", slot+1)
			guid := fmt.Sprintf("78696e707574%02x000000000000000000", slot)
			gp, err := c.connectGamepad(name, guid)
			if err == nil {
				gp.native = &xinputNativeGamepad{slot: slot}
				for i := range xinputButtonBits {
					c.markButtonSupported(gp, uint32(i))
				}
				for i := 0; i < xinputAxisCount; i++ {
					c.markAxisSupported(gp, uint32(i))
				}
				handled = true
			}
		} else {
			if gp := c.reg.findActive(func(g *Gamepad) bool {
				ng, ok := g.native.(*xinputNativeGamepad)
				return ok && ng.slot == slot
			}); gp != nil {
				c.disconnectGamepad(gp)
				handled = true
			}
		}
	}
	return handled
}

func (b *windowsBackend) updatePlatform(c *Container, g *Gamepad) bool {
	switch ng := g.native.(type) {
	case *xinputNativeGamepad:
		return ng.update(c, g)
	case *diNativeGamepad:
		return ng.update(c, g)
	}
	return false
}

func (b *windowsBackend) releasePlatform(g *Gamepad) {
	if g.native != nil {
		g.native.close()
	}
}

// buttonFallback and axisFallback use raw-code partitioning to disambiguate
// the two physical input families this backend can surface: codes 0..13
// are XInput's fixed layout; anything else (DirectInput object offsets,
// biased by +1000 in diNativeGamepad.update) has no universal hardcoded
// meaning and falls back to Unknown, same as Linux evdev.
func (b *windowsBackend) buttonFallback(code uint32) Button {
	if int(code) < len(xinputFallbackButtons) {
		return xinputFallbackButtons[code]
	}
	return ButtonUnknown
}

func (b *windowsBackend) axisFallback(code uint32) Axis {
	if code <= uint32(AxisRightTrigger) {
		return Axis(code)
	}
	return AxisUnknown
}

// --- XInput per-gamepad state -------------------------------------------

type xinputNativeGamepad struct {
	slot uint32
}

func (ng *xinputNativeGamepad) close() {}

func (ng *xinputNativeGamepad) update(c *Container, g *Gamepad) bool {
	var state xinputState
	r, _, _ := xInputGetState.Call(uintptr(ng.slot), uintptr(unsafe.Pointer(&state)))
	if r != 0 {
		return false
	}
	handled := false
	for i, bit := range xinputButtonBits {
		pressed := state.gamepad.wButtons&bit != 0
		btn := c.resolveButton(g, uint32(i))
		if btn == ButtonUnknown {
			continue
		}
		if pressed != g.Button(btn).Current {
			c.handleButtonEvent(g, btn, pressed)
			handled = true
		}
	}

	axisRaw := [6]float32{
		normalizeRange(int64(state.gamepad.sThumbLX), -32768, 32767),
		-normalizeRange(int64(state.gamepad.sThumbLY), -32768, 32767),
		normalizeRange(int64(state.gamepad.sThumbRX), -32768, 32767),
		-normalizeRange(int64(state.gamepad.sThumbRY), -32768, 32767),
		normalizeRange(int64(state.gamepad.bLeftTrigger), 0, 255),
		normalizeRange(int64(state.gamepad.bRightTrigger), 0, 255),
	}
	for i, v := range axisRaw {
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
	return handled
}

// --- DirectInput per-gamepad state ---------------------------------------

type diNativeGamepad struct {
	dev   *iDirectInputDevice8
	prev  diJoyState
}

func (ng *diNativeGamepad) close() {
	if ng.dev != nil {
		ng.dev.Unacquire()
		ng.dev.Release()
		ng.dev = nil
	}
}

func (ng *diNativeGamepad) update(c *Container, g *Gamepad) bool {
	if ng.dev == nil {
		return false
	}
	var s diJoyState
	if ng.dev.GetDeviceState(unsafe.Sizeof(s), unsafe.Pointer(&s)) != 0 {
		return false
	}
	handled := false

	axes := [6]int32{s.lX, s.lY, s.lZ, s.lRx, s.lRy, s.lRz}
	prevAxes := [6]int32{ng.prev.lX, ng.prev.lY, ng.prev.lZ, ng.prev.lRx, ng.prev.lRy, ng.prev.lRz}
	for i, v := range axes {
		if v == prevAxes[i] {
			continue
		}
		// DirectInput object offsets have no universal canonical meaning
		// without a mapping entry; raw codes here are biased so they never
		// collide with the XInput fallback range (see buttonFallback).
		axis := c.resolveAxis(g, uint32(1000+i))
		if axis == AxisUnknown {
			continue
		}
		norm := deadzoneApply(normalizeRange(int64(v), 0, 65535), g.Axis(axis).Deadzone)
		c.handleAxisEvent(g, axis, norm)
		handled = true
	}

	for i := 0; i < 32; i++ {
		pressed := s.rgbButtons[i]&0x80 != 0
		if pressed == (ng.prev.rgbButtons[i]&0x80 != 0) {
			continue
		}
		btn := c.resolveButton(g, uint32(1000+i))
		if btn == ButtonUnknown {
			continue
		}
		c.handleButtonEvent(g, btn, pressed)
		handled = true
	}

	ng.prev = s
	return handled
}

// createDirectInput8 best-effort loads dinput8.dll and calls
// DirectInput8Create. A nil return means "no DirectInput devices this
// session", which is a valid, non-error outcome.
func createDirectInput8() *iDirectInput8 {
	dinput8 := syscall.NewLazyDLL("dinput8.dll")
	if err := dinput8.Load(); err != nil {
		return nil
	}
	create := dinput8.NewProc("DirectInput8Create")
	if err := create.Find(); err != nil {
		return nil
	}
	// IID_IDirectInput8W: {BF798031-483A-4DA2-AA99-5D64ED369700}
	iid := winGUID{0xBF798031, 0x483A, 0x4DA2, [8]byte{0xAA, 0x99, 0x5D, 0x64, 0xED, 0x36, 0x97, 0x00}}
	var obj *iDirectInput8
	hinst, _, _ := syscall.NewLazyDLL("kernel32.dll").NewProc("GetModuleHandleW").Call(0)
	const directInputVersion = 0x0800
	r, _, _ := create.Call(
		hinst,
		uintptr(directInputVersion),
		uintptr(unsafe.Pointer(&iid)),
		uintptr(unsafe.Pointer(&obj)),
		0,
	)
	if r != 0 || obj == nil {
		return nil
	}
	return obj
}
