// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package owner

import (
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/navara-labs/nnsvm/chain"
)

func ctx(predecessor chain.AccountID) *chain.CallContext {
	return &chain.CallContext{Current: "registry", Predecessor: predecessor}
}

func TestOwnerLifecycle(t *testing.T) {
	t.Parallel()

	o := New(memdb.New())
	if _, ok, err := o.Get(); err != nil || ok {
		t.Fatalf("unexpected owner before init: %v", err)
	}
	if err := o.Init("alice"); err != nil {
		t.Fatal(err)
	}
	if err := o.Init("bob"); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	tt := []struct {
		name string
		f    func() error
		err  error
	}{
		{"non owner requires", func() error { return o.Require(ctx("bob")) }, ErrNotOwner},
		{"owner requires", func() error { return o.Require(ctx("alice")) }, nil},
		{"non owner proposes", func() error { return o.Propose(ctx("bob"), "bob") }, ErrNotOwner},
		{"owner proposes", func() error { return o.Propose(ctx("alice"), "bob") }, nil},
		{"stranger accepts", func() error { return o.Accept(ctx("carol")) }, ErrNotProposed},
		{"proposed accepts", func() error { return o.Accept(ctx("bob")) }, nil},
		{"old owner loses role", func() error { return o.Require(ctx("alice")) }, ErrNotOwner},
		{"second accept", func() error { return o.Accept(ctx("bob")) }, ErrNotProposed},
		{"renounce", func() error { return o.Renounce(ctx("bob")) }, nil},
		{"nobody owns", func() error { return o.Require(ctx("bob")) }, ErrNotOwner},
	}
	for _, tv := range tt {
		if err := tv.f(); !errors.Is(err, tv.err) {
			t.Fatalf("%s: expected %v, got %v", tv.name, tv.err, err)
		}
	}
	if err := o.Init("carol"); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("renounced contract re-initialized: %v", err)
	}
}

func TestHandle(t *testing.T) {
	t.Parallel()

	o := New(memdb.New())
	if err := o.Init("alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := o.Handle(ctx("alice"), "register", nil); ok {
		t.Fatal("handled unrelated method")
	}
	v, ok, err := o.Handle(ctx("bob"), GetOwnerMethod, nil)
	if !ok || err != nil || string(v) != `"alice"` {
		t.Fatalf("unexpected owner view %s (%v)", v, err)
	}
	v, _, err = o.Handle(ctx("bob"), GetProposedMethod, nil)
	if err != nil || string(v) != "null" {
		t.Fatalf("unexpected proposal view %s (%v)", v, err)
	}
	if _, _, err := o.Handle(ctx("alice"), ProposeOwnerMethod, []byte(`{"account_id":"bob"}`)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := o.Handle(ctx("bob"), AcceptOwnerMethod, nil); err != nil {
		t.Fatal(err)
	}
	if id, _, _ := o.Get(); id != "bob" {
		t.Fatalf("owner is %s", id)
	}
}
