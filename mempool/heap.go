// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"github.com/ava-labs/avalanchego/ids"
)

// entry is used to track the position of an item in the heap.
type entry struct {
	id    ids.ID
	seq   uint64
	item  Item
	index int
}

// internalHeap orders pending items by [seq], lowest first.
type internalHeap struct {
	items  []*entry
	lookup map[ids.ID]*entry
}

func newInternalHeap(items int) *internalHeap {
	return &internalHeap{
		items:  make([]*entry, 0, items),
		lookup: map[ids.ID]*entry{},
	}
}

func (h internalHeap) Len() int { return len(h.items) }

func (h internalHeap) Less(i, j int) bool {
	return h.items[i].seq < h.items[j].seq
}

func (h internalHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *internalHeap) Push(x interface{}) {
	e := x.(*entry)
	if h.Has(e.id) {
		return
	}
	e.index = len(h.items)
	h.items = append(h.items, e)
	h.lookup[e.id] = e
}

func (h *internalHeap) Pop() interface{} {
	n := len(h.items)
	e := h.items[n-1]
	h.items[n-1] = nil // avoid memory leak
	h.items = h.items[0 : n-1]
	delete(h.lookup, e.id)
	return e
}

func (h *internalHeap) Get(id ids.ID) (*entry, bool) {
	e, ok := h.lookup[id]
	return e, ok
}

func (h *internalHeap) Has(id ids.ID) bool {
	_, has := h.Get(id)
	return has
}
