// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mempool holds receipts waiting to be executed, in the order they
// were created.
package mempool

import (
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
)

// Item is anything that can wait in the pool.
type Item interface {
	ID() ids.ID
	// Seq orders items; lower values execute first.
	Seq() uint64
}

type Mempool struct {
	mu sync.RWMutex

	maxSize int
	heap    *internalHeap
}

// New creates a pool holding at most [maxSize] items. Items already in the
// pool are never evicted.
func New(maxSize int) *Mempool {
	return &Mempool{
		maxSize: maxSize,
		heap:    newInternalHeap(maxSize),
	}
}

// Add returns false if the item is a duplicate or the pool is full.
func (m *Mempool) Add(item Item) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := item.ID()
	if m.heap.Has(id) {
		return false
	}
	if m.heap.Len() >= m.maxSize {
		return false
	}
	heap.Push(m.heap, &entry{
		id:   id,
		seq:  item.Seq(),
		item: item,
	})
	return true
}

// PeekMin returns the next item to execute.
func (m *Mempool) PeekMin() (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.heap.Len() == 0 {
		return nil, false
	}
	return m.heap.items[0].item, true
}

// PopMin removes and returns the next item to execute.
func (m *Mempool) PopMin() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.heap.Len() == 0 {
		return nil, false
	}
	e := heap.Pop(m.heap).(*entry)
	return e.item, true
}

func (m *Mempool) Has(id ids.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.heap.Has(id)
}

func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.heap.Len()
}
