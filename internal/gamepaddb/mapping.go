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

// Package gamepaddb parses SDL_GameControllerDB-format mapping text and
// resolves platform-native button/axis codes to a small "standard" gamepad
// model, mirroring the split ebiten itself uses between its
// internal/gamepad package and this one (see gamepad_linux.go's calls into
// gamepaddb.StandardAxis / gamepaddb.StandardButton).
package gamepaddb

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// StandardButton mirrors the 15 SDL-format button fields that can appear in
// a mapping line's binding list (a, b, x, y, back, start, guide,
// leftshoulder, rightshoulder, leftstick, rightstick, dpup, dpdown, dpleft,
// dpright). Its order differs from gamepads.Button (Start and Guide are
// swapped), so the gamepads package translates it through an explicit
// table rather than a numeric cast.
type StandardButton int

// StandardButtonUnknown is the sentinel for "not one of the SDL fields".
const StandardButtonUnknown StandardButton = -1

const (
	StandardButtonSouth StandardButton = iota
	StandardButtonEast
	StandardButtonWest
	StandardButtonNorth
	StandardButtonBack
	StandardButtonStart
	StandardButtonGuide
	StandardButtonLeftShoulder
	StandardButtonRightShoulder
	StandardButtonLeftStick
	StandardButtonRightStick
	StandardButtonDpadUp
	StandardButtonDpadDown
	StandardButtonDpadLeft
	StandardButtonDpadRight

	numStandardButtons = iota
)

// StandardAxis mirrors the 6 SDL-format axis fields (leftx, lefty, rightx,
// righty, lefttrigger, righttrigger). Its values correspond positionally to
// gamepads.Axis's first six entries.
type StandardAxis int

// StandardAxisUnknown is the sentinel for "not one of the SDL fields".
const StandardAxisUnknown StandardAxis = -1

const (
	StandardAxisLeftX StandardAxis = iota
	StandardAxisLeftY
	StandardAxisRightX
	StandardAxisRightY
	StandardAxisLeftTrigger
	StandardAxisRightTrigger

	numStandardAxes = iota
)

// ElementKind discriminates what an Element reads from the native device,
// matching an SDL mapping's `type` field on an "out" binding.
type ElementKind int

const (
	ElementUnknown ElementKind = iota
	ElementAxis
	ElementButton
	ElementHatBit
)

// Element is one resolved `field:binding` entry: what native input produces
// this standard button/axis, and how to rescale it.
type Element struct {
	Kind ElementKind
	// Index is the native axis/button index, or (for HatBit) the hat
	// number packed in the high nibble and the bit number in the low
	// nibble.
	Index      uint8
	AxisScale  int8
	AxisOffset int8
}

// Valid reports whether this Element was actually populated by a binding.
func (e Element) Valid() bool {
	return e.Kind != ElementUnknown
}

// guidLen is the number of hex characters a GUID field must have.
const guidLen = 32

// maxNativeButtons and maxNativeAxes bound the reverse lookup tables.
// 256 covers every single-byte evdev/DirectInput/HID button code; 64
// covers evdev's ABS_CNT, DirectInput's object count and a comfortable
// margin of HID usages beyond that.
const (
	maxNativeButtons = 256
	maxNativeAxes    = 64
)

// Mapping is one parsed SDL mapping line, plus the reverse lookup tables
// built from it once at parse time.
type Mapping struct {
	GUID string
	Name string

	Buttons [numStandardButtons]Element
	Axes    [numStandardAxes]Element

	RButtons [maxNativeButtons]StandardButton
	RAxes    [maxNativeAxes]StandardAxis
}

// sdlButtonFields lists the button-valued SDL field names in mapping-line
// order, positionally aligned with the StandardButton constants.
var sdlButtonFields = [numStandardButtons]string{
	"a", "b", "x", "y", "back", "start", "guide",
	"leftshoulder", "rightshoulder", "leftstick", "rightstick",
	"dpup", "dpdown", "dpleft", "dpright",
}

// sdlAxisFields lists the axis-valued SDL field names, positionally
// aligned with the StandardAxis constants.
var sdlAxisFields = [numStandardAxes]string{
	"leftx", "lefty", "rightx", "righty", "lefttrigger", "righttrigger",
}

func buttonFieldIndex(name string) int {
	for i, f := range sdlButtonFields {
		if f == name {
			return i
		}
	}
	return -1
}

func axisFieldIndex(name string) int {
	for i, f := range sdlAxisFields {
		if f == name {
			return i
		}
	}
	return -1
}

// ParseLine parses one SDL mapping line for the given running platform
// ("Linux", "Windows", "Mac OS X", "Web"). It returns (nil, false) for any
// malformed or platform-mismatched line; it never errors the caller out of
// processing the rest of a file.
func ParseLine(line string, platform string) (*Mapping, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, false
	}

	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return nil, false
	}

	guid := fields[0]
	if len(guid) != guidLen || !isHex(guid) {
		return nil, false
	}

	name := fields[1]
	if len(name) > 127 {
		return nil, false
	}

	m := &Mapping{
		GUID: strings.ToLower(guid),
		Name: name,
	}
	for i := range m.RButtons {
		m.RButtons[i] = StandardButtonUnknown
	}
	for i := range m.RAxes {
		m.RAxes[i] = StandardAxisUnknown
	}

	platformOK := true
	for _, field := range fields[2:] {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, binding, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}

		if key == "platform" {
			if binding != platform && binding != "" {
				platformOK = false
			}
			continue
		}

		if bi := buttonFieldIndex(key); bi >= 0 {
			elem, ok := parseBinding(binding)
			if !ok {
				continue
			}
			m.Buttons[bi] = elem
			continue
		}
		if ai := axisFieldIndex(key); ai >= 0 {
			elem, ok := parseBinding(binding)
			if !ok {
				continue
			}
			m.Axes[ai] = elem
			continue
		}
		// Unrecognised field name: ignore it, keep parsing the line.
	}

	if !platformOK {
		return nil, false
	}

	m.buildReverseTables()
	return m, true
}

// parseBinding decodes one `a[+-]N[~]`, `bN` or `hH.B` binding, plus an
// optional leading `+`/`-` output-range modifier.
func parseBinding(binding string) (Element, bool) {
	if binding == "" {
		return Element{}, false
	}

	scale := int8(2)
	offset := int8(-1)
	switch binding[0] {
	case '+':
		// Output constrained to [0, 1].
		scale, offset = 1, 0
		binding = binding[1:]
	case '-':
		// Output constrained to [-1, 0].
		scale, offset = 1, -1
		binding = binding[1:]
	}
	if binding == "" {
		return Element{}, false
	}

	switch binding[0] {
	case 'b':
		n, err := strconv.Atoi(binding[1:])
		if err != nil || n < 0 || n > 255 {
			return Element{}, false
		}
		return Element{Kind: ElementButton, Index: uint8(n), AxisScale: scale, AxisOffset: offset}, true

	case 'a':
		rest := binding[1:]
		inverted := false
		if strings.HasSuffix(rest, "~") {
			inverted = true
			rest = rest[:len(rest)-1]
		}
		switch {
		case strings.HasPrefix(rest, "+"):
			rest = rest[1:]
		case strings.HasPrefix(rest, "-"):
			scale, offset = 1, -1
			rest = rest[1:]
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 255 {
			return Element{}, false
		}
		if inverted {
			scale = -scale
		}
		return Element{Kind: ElementAxis, Index: uint8(n), AxisScale: scale, AxisOffset: offset}, true

	case 'h':
		hat, bit, ok := strings.Cut(binding[1:], ".")
		if !ok {
			return Element{}, false
		}
		h, err1 := strconv.Atoi(hat)
		b, err2 := strconv.Atoi(bit)
		if err1 != nil || err2 != nil || h < 0 || h > 15 || b < 0 || b > 15 {
			return Element{}, false
		}
		return Element{Kind: ElementHatBit, Index: uint8(h<<4 | b), AxisScale: scale, AxisOffset: offset}, true
	}

	return Element{}, false
}

// buildReverseTables builds RButtons/RAxes from Buttons/Axes: for each
// standard slot, record the reverse lookup at the native code it was bound
// to.
func (m *Mapping) buildReverseTables() {
	for sb, elem := range m.Buttons {
		if elem.Kind != ElementButton {
			continue
		}
		if int(elem.Index) < len(m.RButtons) {
			m.RButtons[elem.Index] = StandardButton(sb)
		}
	}
	for sa, elem := range m.Axes {
		if elem.Kind != ElementAxis {
			continue
		}
		if int(elem.Index) < len(m.RAxes) {
			m.RAxes[elem.Index] = StandardAxis(sa)
		}
	}
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeGUID applies a platform-specific rewrite so that a device's
// synthesized GUID lines up with the SDL database's conventions. platform
// is the running platform string ("Mac OS X" or "Windows"); other
// platforms are returned unchanged.
func NormalizeGUID(guid string, platform string) string {
	if len(guid) != guidLen {
		return guid
	}
	switch platform {
	case "Mac OS X":
		if allZero(guid[4:16]) && allZero(guid[20:32]) {
			return fmt.Sprintf("03000000%s0000%s000000000000", guid[0:4], guid[16:20])
		}
	case "Windows":
		if guid[20:32] == "504944564944" {
			return fmt.Sprintf("03000000%s0000%s000000000000", guid[0:4], guid[16:20])
		}
	}
	return guid
}

func allZero(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}

// splitLines is a small helper used by DB.Update to iterate a mapping text
// blob line by line without pulling in a CSV parser that doesn't fit this
// format (variable field count, colon-delimited subfields).
func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
