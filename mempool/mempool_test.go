// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool_test

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/navara-labs/nnsvm/mempool"
)

type testItem struct {
	id  ids.ID
	seq uint64
}

func (t *testItem) ID() ids.ID  { return t.id }
func (t *testItem) Seq() uint64 { return t.seq }

func newItem(seq uint64) *testItem {
	return &testItem{id: ids.ID{byte(seq), byte(seq >> 8)}, seq: seq}
}

func TestMempool(t *testing.T) {
	t.Parallel()

	m := mempool.New(3)
	for _, seq := range []uint64{20, 5, 11} {
		if !m.Add(newItem(seq)) {
			t.Fatalf("item %d was not added", seq)
		}
	}
	if m.Add(newItem(5)) {
		t.Fatal("duplicate item was added")
	}
	if m.Add(newItem(1)) {
		t.Fatal("item was added to a full pool")
	}
	if length := m.Len(); length != 3 {
		t.Fatalf("length expected 3, got %d", length)
	}
	if it, _ := m.PeekMin(); it.Seq() != 5 {
		t.Fatalf("seq expected 5, got %d", it.Seq())
	}
	for _, exp := range []uint64{5, 11, 20} {
		it, ok := m.PopMin()
		if !ok {
			t.Fatal("pool drained early")
		}
		if it.Seq() != exp {
			t.Fatalf("seq expected %d, got %d", exp, it.Seq())
		}
		if m.Has(it.ID()) {
			t.Fatalf("popped item %d still tracked", exp)
		}
	}
	if _, ok := m.PopMin(); ok {
		t.Fatal("empty pool returned an item")
	}
}
