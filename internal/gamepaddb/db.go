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
	_ "embed"
	"strings"
)

// controllerDB is a representative sample of the SDL_GameControllerDB
// mapping text (https://github.com/mdqinc/SDL_GameControllerDB), the same
// source ebiten's own gamepaddb-gen.go pulls from. This embeds enough real
// entries to exercise every parse path and seed a handful of well-known
// controllers, without trying to ship the ~1500-line upstream file
// verbatim.
//
//go:embed gamecontrollerdb.txt
var controllerDB []byte

// mappingsCapacityHint documents the rough scale SDL_GameControllerDB
// entries run to (~1300 distinct GUIDs upstream). DB itself grows a plain
// slice rather than a fixed-capacity array, which is the natural idiom in a
// language with a garbage collector and no manual aliasing constraints.
const mappingsCapacityHint = 1300

// DB is the mapping database: parsed SDL mapping lines indexed by GUID.
// One DB is created per Container; nothing here requires a single
// process-wide singleton.
type DB struct {
	mappings []*Mapping
}

// NewDB creates an empty mapping database.
func NewDB() *DB {
	return &DB{}
}

// NewDefaultDB creates a mapping database seeded with the embedded sample
// SDL_GameControllerDB text for the given platform.
func NewDefaultDB(platform string) *DB {
	db := NewDB()
	_ = db.Update(controllerDB, platform) // embedded text is well-formed; parse errors are impossible here
	return db
}

// Update parses mapping text (one mapping per line) and merges it into db:
// each successfully parsed line replaces any existing mapping with the same
// GUID, or is appended if the GUID is new. Malformed or platform-mismatched
// lines are skipped; Update never fails on a single bad line, and never
// aborts the whole import.
func (db *DB) Update(text []byte, platform string) error {
	for _, line := range splitLines(text) {
		m, ok := ParseLine(line, platform)
		if !ok {
			continue
		}
		db.upsert(m)
	}
	return nil
}

func (db *DB) upsert(m *Mapping) {
	for i, existing := range db.mappings {
		if existing.GUID == m.GUID {
			db.mappings[i] = m
			return
		}
	}
	db.mappings = append(db.mappings, m)
}

// FindExact performs a linear scan requiring an exact 32-character GUID
// match.
func (db *DB) FindExact(guid string) (*Mapping, bool) {
	guid = strings.ToLower(guid)
	for _, m := range db.mappings {
		if m.GUID == guid {
			return m, true
		}
	}
	return nil, false
}

// FindPermissive performs a linear scan matching only the first 24
// characters, ignoring the trailing version-suffix byte pairs.
func (db *DB) FindPermissive(guid string) (*Mapping, bool) {
	guid = strings.ToLower(guid)
	if len(guid) < 24 {
		return nil, false
	}
	prefix := guid[:24]
	for _, m := range db.mappings {
		if len(m.GUID) >= 24 && m.GUID[:24] == prefix {
			return m, true
		}
	}
	return nil, false
}

// FindValid tries an exact match, then falls back to a permissive one,
// else reports no mapping.
func (db *DB) FindValid(guid string) (*Mapping, bool) {
	if m, ok := db.FindExact(guid); ok {
		return m, true
	}
	if m, ok := db.FindPermissive(guid); ok {
		return m, true
	}
	return nil, false
}

// Len reports how many distinct mappings are currently stored.
func (db *DB) Len() int {
	return len(db.mappings)
}
