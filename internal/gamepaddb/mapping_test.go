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

package gamepaddb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Parsing "a:b0,b:b1,x:b3,y:b2" must produce a reverse table where
// rButtons[i] maps back to the right standard button.
func TestParseLineReverseTable(t *testing.T) {
	line := "03000000000000000000000000000000,Foo,a:b0,b:b1,x:b3,y:b2,platform:Linux,"
	m, ok := ParseLine(line, "Linux")
	require.True(t, ok)

	require.Equal(t, uint8(0), m.Buttons[StandardButtonSouth].Index)
	require.Equal(t, uint8(1), m.Buttons[StandardButtonEast].Index)
	require.Equal(t, uint8(3), m.Buttons[StandardButtonWest].Index)
	require.Equal(t, uint8(2), m.Buttons[StandardButtonNorth].Index)

	require.Equal(t, StandardButtonSouth, m.RButtons[0])
	require.Equal(t, StandardButtonEast, m.RButtons[1])
	require.Equal(t, StandardButtonNorth, m.RButtons[2])
	require.Equal(t, StandardButtonWest, m.RButtons[3])
	require.Equal(t, StandardButtonUnknown, m.RButtons[4])
}

func TestParseLineRejectsBadGUID(t *testing.T) {
	_, ok := ParseLine("short,Foo,a:b0,", "Linux")
	require.False(t, ok)
}

func TestParseLineRejectsWrongPlatform(t *testing.T) {
	line := "03000000000000000000000000000000,Foo,a:b0,platform:Windows,"
	_, ok := ParseLine(line, "Linux")
	require.False(t, ok)
}

func TestParseLineIgnoresUnknownField(t *testing.T) {
	line := "03000000000000000000000000000000,Foo,a:b0,frobnicate:b9,b:b1,platform:Linux,"
	m, ok := ParseLine(line, "Linux")
	require.True(t, ok)
	require.True(t, m.Buttons[StandardButtonEast].Valid())
}

func TestParseLineAxisInversionAndModifier(t *testing.T) {
	line := "03000000000000000000000000000000,Foo,leftx:a0~,lefty:+a1,righttrigger:-a2,platform:Linux,"
	m, ok := ParseLine(line, "Linux")
	require.True(t, ok)

	require.Equal(t, ElementAxis, m.Axes[StandardAxisLeftX].Kind)
	require.Equal(t, int8(-2), m.Axes[StandardAxisLeftX].AxisScale)

	require.Equal(t, int8(1), m.Axes[StandardAxisLeftY].AxisScale)
	require.Equal(t, int8(0), m.Axes[StandardAxisLeftY].AxisOffset)

	require.Equal(t, int8(1), m.Axes[StandardAxisRightTrigger].AxisScale)
	require.Equal(t, int8(-1), m.Axes[StandardAxisRightTrigger].AxisOffset)
}

func TestParseLineHatBit(t *testing.T) {
	line := "03000000000000000000000000000000,Foo,dpup:h0.1,dpright:h0.2,platform:Linux,"
	m, ok := ParseLine(line, "Linux")
	require.True(t, ok)
	require.Equal(t, ElementHatBit, m.Buttons[StandardButtonDpadUp].Kind)
	require.Equal(t, uint8(0<<4|1), m.Buttons[StandardButtonDpadUp].Index)
}

func TestNormalizeGUIDMac(t *testing.T) {
	raw := "5e04" + "000000000000" + "0203" + "000000000000"
	require.Len(t, raw, 32)
	got := NormalizeGUID(raw, "Mac OS X")
	require.Equal(t, "030000005e0400000203000000000000", got)
}

func TestNormalizeGUIDMacLeavesNonZeroAlone(t *testing.T) {
	raw := "5e04" + "000000000001" + "0203" + "000000000000"
	got := NormalizeGUID(raw, "Mac OS X")
	require.Equal(t, raw, got)
}

func TestNormalizeGUIDWindows(t *testing.T) {
	raw := "5e04" + "112233445566" + "0203" + "504944564944"
	require.Len(t, raw, 32)
	got := NormalizeGUID(raw, "Windows")
	require.Equal(t, "030000005e0400000203000000000000", got)
}

// A device GUID sharing only the first 24 chars with a stored mapping
// must still resolve via FindValid's permissive fallback.
func TestDBFindValidPermissive(t *testing.T) {
	db := NewDB()
	require.NoError(t, db.Update([]byte(
		"030000005e0400008e02000014010000,Xbox 360,a:b0,platform:Linux,\n"), "Linux"))

	m, ok := db.FindValid("030000005e0400008e02000030060000")
	require.True(t, ok)
	require.Equal(t, "030000005e0400008e02000014010000", m.GUID)
}

func TestDBUpdateUpsertsByGUID(t *testing.T) {
	db := NewDB()
	base := "030000005e0400008e02000014010000,Xbox 360,a:b0,platform:Linux,\n"
	require.NoError(t, db.Update([]byte(base), "Linux"))
	require.Equal(t, 1, db.Len())

	replacement := "030000005e0400008e02000014010000,Xbox 360 v2,a:b1,platform:Linux,\n"
	require.NoError(t, db.Update([]byte(replacement), "Linux"))
	require.Equal(t, 1, db.Len())

	m, ok := db.FindExact("030000005e0400008e02000014010000")
	require.True(t, ok)
	require.Equal(t, "Xbox 360 v2", m.Name)
}
