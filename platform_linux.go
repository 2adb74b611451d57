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

//go:build linux

package gamepads

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"unsafe"

	"golang.org/x/sys/unix"
)

// platformName is the string this backend passes to the mapping database
// for platform-tagged SDL fields and GUID normalization.
const platformName = "Linux"

func newBackend() backend {
	return &linuxBackend{inotify: -1}
}

const devInputDir = "/dev/input"

var reEventNode = regexp.MustCompile(`^event[0-9]+$`)

// evdev ioctl request encoding (linux/ioctl.h), reproduced here because the
// stock x/sys/unix package exposes input_event plumbing for specific
// devices but not the generic _IOC macro evdev relies on.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func eviocgbit(ev, length uintptr) uintptr {
	return ioc(iocRead, 'E', 0x20+ev, length)
}

func eviocgid() uintptr {
	return ioc(iocRead, 'E', 0x02, unsafe.Sizeof(inputID{}))
}

func eviocgname(length uintptr) uintptr {
	return ioc(iocRead, 'E', 0x06, length)
}

func eviocgabs(abs uintptr) uintptr {
	return ioc(iocRead, 'E', 0x40+abs, unsafe.Sizeof(inputAbsInfo{}))
}

// Linux input-event-codes.h constants relevant to gamepads.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03
	evCnt = 0x20

	synReport  = 0
	synDropped = 3

	btnMisc = 0x100
	keyCnt  = 0x300

	absHat0X = 0x10
	absHat3Y = 0x19
	absCnt   = 0x40
)

type inputID struct {
	busType uint16
	vendor  uint16
	product uint16
	version uint16
}

type inputAbsInfo struct {
	value      int32
	minimum    int32
	maximum    int32
	fuzz       int32
	flat       int32
	resolution int32
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func isBitSet(bits []byte, bit int) bool {
	return bits[bit/8]&(1<<(uint(bit)%8)) != 0
}

func byteSliceToString(s []byte) string {
	if i := bytes.IndexByte(s, 0); i != -1 {
		s = s[:i]
	}
	return string(s)
}

// linuxBackend watches /dev/input for hot-plug changes via inotify and
// opens each evdev node it finds.
type linuxBackend struct {
	inotify int
	watch   int
}

func (b *linuxBackend) initPlatform(c *Container) error {
	var stat unix.Stat_t
	if err := unix.Stat(devInputDir, &stat); err != nil {
		if err == unix.ENOENT {
			return nil
		}
		return fmt.Errorf("gamepads: stat %s: %w", devInputDir, err)
	}
	if stat.Mode&unix.S_IFDIR == 0 {
		return nil
	}

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return fmt.Errorf("gamepads: inotify_init1: %w", err)
	}
	b.inotify = fd

	watch, err := unix.InotifyAddWatch(b.inotify, devInputDir, unix.IN_CREATE|unix.IN_ATTRIB|unix.IN_DELETE)
	if err != nil {
		return fmt.Errorf("gamepads: inotify_add_watch: %w", err)
	}
	b.watch = watch

	ents, err := os.ReadDir(devInputDir)
	if err != nil {
		return fmt.Errorf("gamepads: ReadDir(%s): %w", devInputDir, err)
	}
	for _, ent := range ents {
		if ent.IsDir() || !reEventNode.MatchString(ent.Name()) {
			continue
		}
		b.openDevice(c, filepath.Join(devInputDir, ent.Name()))
	}
	return nil
}

func (b *linuxBackend) freePlatform(c *Container) {
	if b.inotify >= 0 {
		_ = unix.Close(b.inotify)
		b.inotify = -1
	}
}

// openDevice opens one evdev node, rejects it if it isn't a gamepad-shaped
// device (no EV_KEY or no EV_ABS bits), and registers it via the shared
// connect pipeline. Errors that only mean "not accessible right now" are
// swallowed (EACCES/EPERM/ENOENT are all routine races against udev
// permission fixups and unplug events).
func (b *linuxBackend) openDevice(c *Container, path string) {
	if c.reg.findActive(func(g *Gamepad) bool {
		ng, ok := g.native.(*linuxGamepad)
		return ok && ng.path == path
	}) != nil {
		return
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}

	evBits := make([]byte, (evCnt+7)/8)
	keyBits := make([]byte, (keyCnt+7)/8)
	absBits := make([]byte, (absCnt+7)/8)
	var id inputID
	if err := ioctl(fd, eviocgbit(0, uintptr(len(evBits))), unsafe.Pointer(&evBits[0])); err != nil {
		_ = unix.Close(fd)
		return
	}
	if err := ioctl(fd, eviocgbit(evKey, uintptr(len(keyBits))), unsafe.Pointer(&keyBits[0])); err != nil {
		_ = unix.Close(fd)
		return
	}
	if err := ioctl(fd, eviocgbit(evAbs, uintptr(len(absBits))), unsafe.Pointer(&absBits[0])); err != nil {
		_ = unix.Close(fd)
		return
	}
	_ = ioctl(fd, eviocgid(), unsafe.Pointer(&id))

	if !isBitSet(evBits, evKey) || !isBitSet(evBits, evAbs) {
		_ = unix.Close(fd)
		return
	}

	nameBuf := make([]byte, 256)
	name := "Unknown"
	if err := ioctl(fd, eviocgname(uintptr(len(nameBuf))), unsafe.Pointer(&nameBuf[0])); err == nil {
		name = byteSliceToString(nameBuf)
	}

	guid := evdevGUID(id, name)

	ng := &linuxGamepad{fd: fd, path: path}
	for i := range ng.keyMap {
		ng.keyMap[i] = -1
	}
	for i := range ng.absMap {
		ng.absMap[i] = -1
	}

	buttonCount := 0
	for code := btnMisc; code < keyCnt; code++ {
		if !isBitSet(keyBits, code) {
			continue
		}
		ng.keyMap[code-btnMisc] = buttonCount
		buttonCount++
	}
	axisCount := 0
	for code := 0; code < absCnt; code++ {
		if !isBitSet(absBits, code) {
			continue
		}
		if err := ioctl(fd, eviocgabs(uintptr(code)), unsafe.Pointer(&ng.absInfo[code])); err != nil {
			continue
		}
		ng.absMap[code] = axisCount
		axisCount++
	}

	gp, err := c.connectGamepad(name, guid)
	if err != nil {
		// ErrNoFreeSlot: too many gamepads already connected, ignore.
		_ = unix.Close(fd)
		return
	}
	gp.native = ng
	for i := 0; i < buttonCount; i++ {
		c.markButtonSupported(gp, uint32(i))
	}
	for i := 0; i < axisCount; i++ {
		c.markAxisSupported(gp, uint32(i))
	}
	ng.pollAbsState(c, gp)
}

// evdevGUID synthesizes an SDL-format GUID from the bus/vendor/product/
// version quadruple evdev reports, falling back to a name-derived GUID for
// devices that don't report one.
func evdevGUID(id inputID, name string) string {
	if id.vendor != 0 && id.product != 0 && id.version != 0 {
		return fmt.Sprintf("%02x%02x0000%02x%02x0000%02x%02x0000%02x%02x0000",
			byte(id.busType), byte(id.busType>>8),
			byte(id.vendor), byte(id.vendor>>8),
			byte(id.product), byte(id.product>>8),
			byte(id.version), byte(id.version>>8))
	}
	bs := []byte(name)
	if len(bs) < 12 {
		bs = append(bs, make([]byte, 12-len(bs))...)
	}
	return fmt.Sprintf("%02x%02x0000%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x%02x",
		byte(id.busType), byte(id.busType>>8),
		bs[0], bs[1], bs[2], bs[3], bs[4], bs[5], bs[6], bs[7], bs[8], bs[9], bs[10], bs[11])
}

// pollPlatform drains inotify events: new nodes are opened, removed nodes
// are disconnected. Apart from the initial axis read of a newly opened
// device, it never touches per-gamepad input state.
func (b *linuxBackend) pollPlatform(c *Container) bool {
	if b.inotify < 0 {
		return false
	}

	buf := make([]byte, 16384)
	n, err := unix.Read(b.inotify, buf)
	if err != nil {
		return false
	}
	buf = buf[:n]

	handled := false
	for len(buf) >= unix.SizeofInotifyEvent {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[0]))
		nameLen := int(raw.Len)
		name := byteSliceToString(buf[unix.SizeofInotifyEvent : unix.SizeofInotifyEvent+nameLen])
		mask := raw.Mask
		buf = buf[unix.SizeofInotifyEvent+nameLen:]

		if !reEventNode.MatchString(name) {
			continue
		}
		path := filepath.Join(devInputDir, name)

		switch {
		case mask&(unix.IN_CREATE|unix.IN_ATTRIB) != 0:
			b.openDevice(c, path)
			handled = true
		case mask&unix.IN_DELETE != 0:
			if gp := c.reg.findActive(func(g *Gamepad) bool {
				ng, ok := g.native.(*linuxGamepad)
				return ok && ng.path == path
			}); gp != nil {
				c.disconnectGamepad(gp)
				handled = true
			}
		}
	}
	return handled
}

// updatePlatform drains pending input_event records from one gamepad's fd,
// translating EV_KEY/EV_ABS into canonical button/axis events through the
// container's resolution pipeline.
func (b *linuxBackend) updatePlatform(c *Container, g *Gamepad) bool {
	ng, ok := g.native.(*linuxGamepad)
	if !ok || ng.fd < 0 {
		return false
	}

	const eventSize = 24 // sizeof(struct input_event) on a 64-bit kernel ABI
	buf := make([]byte, eventSize)
	handled := false
	for {
		n, err := unix.Read(ng.fd, buf)
		if err != nil || n < eventSize {
			break
		}

		typ := uint16(buf[16]) | uint16(buf[17])<<8
		code := uint16(buf[18]) | uint16(buf[19])<<8
		value := int32(buf[20]) | int32(buf[21])<<8 | int32(buf[22])<<16 | int32(buf[23])<<24

		switch typ {
		case evSyn:
			switch code {
			case synDropped:
				ng.dropped = true
			case synReport:
				if ng.dropped {
					ng.dropped = false
					ng.pollAbsState(c, g)
				}
			}
		case evKey:
			if ng.dropped {
				continue
			}
			idx := int(code) - btnMisc
			if idx < 0 || idx >= len(ng.keyMap) || ng.keyMap[idx] < 0 {
				continue
			}
			btn := c.resolveButton(g, uint32(ng.keyMap[idx]))
			c.handleButtonEvent(g, btn, value != 0)
			handled = true
		case evAbs:
			if ng.dropped {
				continue
			}
			if ng.handleAbsEvent(c, g, int(code), value) {
				handled = true
			}
		}
	}
	return handled
}

func (b *linuxBackend) releasePlatform(g *Gamepad) {
	if ng, ok := g.native.(*linuxGamepad); ok {
		ng.close()
	}
}

// buttonFallback and axisFallback have no hardcoded table on Linux: evdev
// button/axis indices vary per device and are only meaningful once
// translated through a mapping. Unlike Windows' XInput, this backend
// relies on the mapping database almost exclusively.
func (b *linuxBackend) buttonFallback(code uint32) Button {
	return ButtonUnknown
}

func (b *linuxBackend) axisFallback(code uint32) Axis {
	return AxisUnknown
}

// linuxGamepad is the native substate for one evdev node.
type linuxGamepad struct {
	fd      int
	path    string
	dropped bool

	keyMap  [keyCnt - btnMisc]int
	absMap  [absCnt]int
	absInfo [absCnt]inputAbsInfo
}

func (ng *linuxGamepad) close() {
	if ng.fd >= 0 {
		_ = unix.Close(ng.fd)
		ng.fd = -1
	}
}

// pollAbsState re-reads every supported absolute axis's current value via
// EVIOCGABS, resyncing absolute state after a SYN_REPORT that follows a
// dropped-events window, and once at open time.
func (ng *linuxGamepad) pollAbsState(c *Container, g *Gamepad) {
	for code := 0; code < absCnt; code++ {
		if ng.absMap[code] < 0 {
			continue
		}
		if err := ioctl(ng.fd, eviocgabs(uintptr(code)), unsafe.Pointer(&ng.absInfo[code])); err != nil {
			continue
		}
		ng.handleAbsEvent(c, g, code, ng.absInfo[code].value)
	}
}

func (ng *linuxGamepad) handleAbsEvent(c *Container, g *Gamepad, code int, value int32) bool {
	idx := ng.absMap[code]
	if idx < 0 {
		return false
	}
	info := ng.absInfo[code]
	info.value = value
	ng.absInfo[code] = info

	v := normalizeRange(int64(value), int64(info.minimum), int64(info.maximum))
	axis := c.resolveAxis(g, uint32(idx))
	if axis == AxisUnknown {
		// The first hat has no SDL axis field; it feeds the dpad composites.
		switch code {
		case absHat0X:
			axis = AxisHatDpadLeftRight
		case absHat0X + 1:
			axis = AxisHatDpadUpDown
		default:
			return false
		}
	}
	state := g.Axis(axis)
	v = deadzoneApply(v, state.Deadzone)
	c.handleAxisEvent(g, axis, v)
	shadowButtonEvents(c, g, axis, v)
	return true
}

// shadowButtonEvents synthesizes the button-shaped reading some analog axes
// also carry, after the axis event itself has been dispatched: a trigger
// pulled past 0.98 counts as pressed, and each dpad hat axis reports a
// press on whichever side its value leans toward, release on the other.
func shadowButtonEvents(c *Container, g *Gamepad, axis Axis, v float32) {
	switch axis {
	case AxisLeftTrigger:
		c.handleButtonEvent(g, ButtonLeftTrigger, v >= 0.98)
	case AxisRightTrigger:
		c.handleButtonEvent(g, ButtonRightTrigger, v >= 0.98)
	case AxisHatDpadLeftRight:
		c.handleButtonEvent(g, ButtonDpadLeft, v < 0)
		c.handleButtonEvent(g, ButtonDpadRight, v > 0)
	case AxisHatDpadUpDown:
		c.handleButtonEvent(g, ButtonDpadUp, v < 0)
		c.handleButtonEvent(g, ButtonDpadDown, v > 0)
	}
}
