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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryInitialStateAllFree(t *testing.T) {
	r := newRegistry(4)
	require.Equal(t, 4, r.free.count)
	require.Equal(t, 0, r.active.count)
	require.Equal(t, 0, r.free.head)
	require.Equal(t, 3, r.free.tail)
}

func TestRegistryFindMovesFreeToActive(t *testing.T) {
	r := newRegistry(2)

	g1, err := r.find()
	require.NoError(t, err)
	require.Equal(t, 1, r.free.count)
	require.Equal(t, 1, r.active.count)

	g2, err := r.find()
	require.NoError(t, err)
	require.Equal(t, 0, r.free.count)
	require.Equal(t, 2, r.active.count)
	require.NotEqual(t, g1.Index, g2.Index)

	_, err = r.find()
	require.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestRegistryReleaseMovesActiveToFree(t *testing.T) {
	r := newRegistry(2)
	g, err := r.find()
	require.NoError(t, err)

	g.Name = "pad"
	r.release(g)

	require.Equal(t, 2, r.free.count)
	require.Equal(t, 0, r.active.count)
	require.Equal(t, "", g.Name) // release resets state
}

func TestRegistryActiveForEachVisitsInDiscoveryOrder(t *testing.T) {
	r := newRegistry(3)
	g1, _ := r.find()
	g2, _ := r.find()
	g3, _ := r.find()
	g1.Name, g2.Name, g3.Name = "a", "b", "c"

	var order []string
	r.activeForEach(func(g *Gamepad) {
		order = append(order, g.Name)
	})
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRegistryFindActive(t *testing.T) {
	r := newRegistry(2)
	g1, _ := r.find()
	g2, _ := r.find()
	g1.GUID = "guid-1"
	g2.GUID = "guid-2"

	found := r.findActive(func(g *Gamepad) bool { return g.GUID == "guid-2" })
	require.Same(t, g2, found)

	require.Nil(t, r.findActive(func(g *Gamepad) bool { return g.GUID == "nope" }))
}

func TestRegistryRebuildFreeListClearsActive(t *testing.T) {
	r := newRegistry(2)
	r.find()
	r.find()
	require.Equal(t, 0, r.free.count)

	r.rebuildFreeList()
	require.Equal(t, 2, r.free.count)
	require.Equal(t, 0, r.active.count)
}
