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

import "errors"

// ErrNoFreeSlot is returned internally when every gamepad slot is already
// active. A backend observing this must simply ignore the discovery event;
// it never reaches application code as an error value.
var ErrNoFreeSlot = errors.New("gamepads: no free slot")

// noIndex is the sentinel for "no node" in the index-based linked lists.
// Stable Gamepad indices rule out using real pointers for these links.
const noIndex = -1

// nodeList is one of Container's two intrusive lists (free or active),
// tracking head, tail and count. The tail of a non-empty list doubles as
// "the most recently touched slot", so no separate cursor is tracked.
type nodeList struct {
	head, tail int
	count      int
}

func newNodeList() nodeList {
	return nodeList{head: noIndex, tail: noIndex}
}

// registry holds the two lists and the backing array they thread through.
// It has no knowledge of what a Gamepad's contents mean; it only moves
// nodes between free and active and keeps their invariants intact.
type registry struct {
	gamepads []Gamepad
	free     nodeList
	active   nodeList
}

func newRegistry(capacity int) *registry {
	r := &registry{
		gamepads: make([]Gamepad, capacity),
		free:     newNodeList(),
		active:   newNodeList(),
	}
	for i := range r.gamepads {
		r.gamepads[i].Index = i
		r.gamepads[i].prev = noIndex
		r.gamepads[i].next = noIndex
	}
	r.rebuildFreeList()
	return r
}

// rebuildFreeList links every slot into the free list in ascending-index
// order and empties the active list, reaching the same state a freshly
// constructed registry starts in.
func (r *registry) rebuildFreeList() {
	r.active = newNodeList()
	r.free = newNodeList()
	for i := range r.gamepads {
		r.gamepads[i].reset()
		r.listAppend(&r.free, i)
	}
}

// listAppend attaches node as the new tail of list, preserving its
// existing head.
func (r *registry) listAppend(list *nodeList, node int) {
	r.gamepads[node].prev = list.tail
	r.gamepads[node].next = noIndex
	if list.tail != noIndex {
		r.gamepads[list.tail].next = node
	} else {
		list.head = node
	}
	list.tail = node
	list.count++
}

// listRemove unlinks node from list, patching neighbours and fixing
// head/tail if node was an endpoint.
func (r *registry) listRemove(list *nodeList, node int) {
	g := &r.gamepads[node]
	if g.prev != noIndex {
		r.gamepads[g.prev].next = g.next
	} else {
		list.head = g.next
	}
	if g.next != noIndex {
		r.gamepads[g.next].prev = g.prev
	} else {
		list.tail = g.prev
	}
	g.prev, g.next = noIndex, noIndex
	list.count--
}

// find detaches the tail of the free list, attaches it as the new tail of
// the active list, zeroes its state and returns it. ErrNoFreeSlot signals
// "too many connected gamepads"; callers must treat it as "ignore this
// discovery", not a fatal condition.
func (r *registry) find() (*Gamepad, error) {
	if r.free.tail == noIndex {
		return nil, ErrNoFreeSlot
	}
	node := r.free.tail
	r.listRemove(&r.free, node)
	r.gamepads[node].reset()
	r.listAppend(&r.active, node)
	return &r.gamepads[node], nil
}

// release moves gamepad from the active list back to the free list,
// zeroing its state. The backend-specific teardown (releasePlatform) must
// already have run before this is called.
func (r *registry) release(g *Gamepad) {
	node := g.Index
	r.listRemove(&r.active, node)
	r.gamepads[node].reset()
	r.listAppend(&r.free, node)
}

// activeForEach visits every active gamepad in list order (discovery
// order). fn may not mutate list membership.
func (r *registry) activeForEach(fn func(*Gamepad)) {
	for i := r.active.head; i != noIndex; i = r.gamepads[i].next {
		fn(&r.gamepads[i])
	}
}

// findActive returns the first active gamepad for which match returns
// true, or nil.
func (r *registry) findActive(match func(*Gamepad) bool) *Gamepad {
	for i := r.active.head; i != noIndex; i = r.gamepads[i].next {
		if match(&r.gamepads[i]) {
			return &r.gamepads[i]
		}
	}
	return nil
}
