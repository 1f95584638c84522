// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resolver_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/stretchr/testify/require"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/owner"
	"github.com/navara-labs/nnsvm/resolver"
)

const name chain.AccountID = "alice.registry"

type env struct {
	t     *testing.T
	r     *chain.Runtime
	nonce int
}

func newEnv(t *testing.T) *env {
	r, err := chain.New(memdb.New(), chain.WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	require.NoError(t, err)
	require.NoError(t, r.RegisterCode(resolver.Code))
	for _, id := range []chain.AccountID{"registry", "alice", "bob", "mallory"} {
		require.NoError(t, r.CreateAccount(id, 100*units.Avax, ""))
	}
	require.NoError(t, r.CreateAccount(name, 3*units.Avax, resolver.CodeName))

	e := &env{t: t, r: r}
	o := e.call("registry", resolver.NewMethod, resolver.Args{OwnerID: "alice"}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	return e
}

// call runs one call to the resolver to completion.
func (e *env) call(signer chain.AccountID, method string, args interface{}, deposit uint64) []*chain.Outcome {
	e.t.Helper()

	b, err := json.Marshal(args)
	require.NoError(e.t, err)
	e.nonce++
	txID, err := e.r.Submit(&chain.Call{
		Signer:   signer,
		Receiver: name,
		Method:   method,
		Args:     b,
		Deposit:  deposit,
		Nonce:    fmt.Sprint(e.nonce),
	})
	require.NoError(e.t, err)
	require.NoError(e.t, e.r.Settle(8))
	outcomes, pending, err := e.r.TxStatus(txID)
	require.NoError(e.t, err)
	require.False(e.t, pending)
	return outcomes
}

func (e *env) view(method string, args interface{}, v interface{}) {
	e.t.Helper()

	b, err := json.Marshal(args)
	require.NoError(e.t, err)
	out, err := e.r.View(name, method, b)
	require.NoError(e.t, err)
	require.NoError(e.t, json.Unmarshal(out, v))
}

func requireFailed(t *testing.T, o *chain.Outcome, err error) {
	t.Helper()

	require.Equal(t, chain.RolledBack, o.Status)
	require.Contains(t, o.Error, err.Error())
}

func TestInit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	var registry chain.AccountID
	e.view("registry", nil, &registry)
	require.Equal(t, chain.AccountID("registry"), registry)

	var owner chain.AccountID
	e.view("own_get_owner", nil, &owner)
	require.Equal(t, chain.AccountID("alice"), owner)

	var icon *string
	e.view("icon", nil, &icon)
	require.NotNil(t, icon)
	require.Equal(t, resolver.Icon, *icon)

	o := e.call("registry", resolver.NewMethod, resolver.Args{OwnerID: "bob"}, 0)
	requireFailed(t, o[0], resolver.ErrAlreadyInitialized)
}

func TestOwnerChanged(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	o := e.call("mallory", resolver.OwnerChangedMethod, resolver.Args{OwnerID: "mallory"}, 0)
	requireFailed(t, o[0], resolver.ErrUnauthorized)

	o = e.call("registry", resolver.OwnerChangedMethod, resolver.Args{OwnerID: "bob"}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	require.JSONEq(t, `"alice"`, string(o[0].Value))

	// The relaying signer already owns the resolver.
	o = e.call("registry", resolver.OwnerChangedMethod, resolver.Args{OwnerID: "registry"}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	o = e.call("registry", resolver.OwnerChangedMethod, resolver.Args{OwnerID: "alice"}, 0)
	requireFailed(t, o[0], resolver.ErrOwnerUnchanged)

	var current chain.AccountID
	e.view("own_get_owner", nil, &current)
	require.Equal(t, chain.AccountID("registry"), current)
}

func TestAddresses(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	addrs := map[string]string{
		"ethereum": "0xB65B139A319A09F088486C22D18074810BA99715",
		"bitcoin":  "mp8g4GZLbAUJZyY7DTMMHroiW9SzbocJUh",
		"near":     "alice.near",
	}
	o := e.call("bob", "set_addresses", map[string]interface{}{"addresses": addrs}, 0)
	requireFailed(t, o[0], owner.ErrNotOwner)

	o = e.call("alice", "set_addresses", map[string]interface{}{"addresses": addrs}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)

	var page []resolver.Address
	e.view("get_addresses", nil, &page)
	require.Len(t, page, 3)
	require.Equal(t, "bitcoin", page[0].Network)
	require.Equal(t, "near", page[2].Network)

	e.view("get_addresses", map[string]uint64{"from_index": 1, "limit": 1}, &page)
	require.Len(t, page, 1)
	require.Equal(t, "ethereum", page[0].Network)
	require.Equal(t, addrs["ethereum"], *page[0].Address)

	// An explicit zero limit is an empty page, not the default.
	e.view("get_addresses", map[string]uint64{"limit": 0}, &page)
	require.Empty(t, page)
	e.view("get_addresses", map[string]uint64{"from_index": 1}, &page)
	require.Len(t, page, 2)

	var res resolver.Address
	e.view("resolve", map[string]string{"network": "solana"}, &res)
	require.Equal(t, "solana", res.Network)
	require.Nil(t, res.Address)
}

func TestTextRecordCap(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	records := map[string]string{}
	for i := 0; i < 8; i++ {
		records[fmt.Sprintf("key%d", i)] = "v"
	}
	o := e.call("alice", "set_text_records", map[string]interface{}{"records": records}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)

	// Three new keys overflow the cap: the whole batch is dropped.
	o = e.call("alice", "set_text_records", map[string]interface{}{"records": map[string]string{
		"a": "1", "b": "2", "c": "3",
	}}, 0)
	requireFailed(t, o[0], resolver.ErrTooManyRecords)
	var got map[string]string
	e.view("get_text_records", nil, &got)
	require.Len(t, got, 8)

	// Overwrites do not count against the cap.
	o = e.call("alice", "set_text_records", map[string]interface{}{"records": map[string]string{
		"key0": "updated", "a": "1", "b": "2",
	}}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	e.view("get_text_records", nil, &got)
	require.Len(t, got, resolver.MaxTextRecords)
	require.Equal(t, "updated", got["key0"])
}

func TestIPFS(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	var v *string
	e.view("ipfs", nil, &v)
	require.Nil(t, v)

	cid := "bafybeighxhsavoanjqkqvnnpbkvoweurybjt7gauunbg37ueahcbze5ise"
	o := e.call("mallory", "set_ipfs", map[string]string{"value": cid}, 0)
	requireFailed(t, o[0], resolver.ErrUnauthorized)
	o = e.call("alice", "set_ipfs", map[string]string{"value": cid}, 0)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	e.view("ipfs", nil, &v)
	require.Equal(t, cid, *v)
}

func TestClearRefundsStorage(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.call("alice", "set_addresses", map[string]interface{}{"addresses": map[string]string{"near": "alice.near"}}, 0)
	e.call("alice", "set_text_records", map[string]interface{}{"records": map[string]string{"twitter": "@alice"}}, 0)
	e.call("alice", "set_ipfs", map[string]string{"value": "cid"}, 0)
	before, _, err := e.r.Account(name)
	require.NoError(t, err)

	o := e.call("mallory", "clear", map[string]string{"beneficiary": "mallory"}, 0)
	requireFailed(t, o[0], resolver.ErrUnauthorized)

	bob, err := e.r.Balance("bob")
	require.NoError(t, err)
	o = e.call("alice", "clear", map[string]string{"beneficiary": "bob"}, 0)
	require.Len(t, o, 2)
	require.Equal(t, chain.Committed, o[0].Status, o[0].Error)
	require.Equal(t, chain.Committed, o[1].Status, o[1].Error)

	after, _, err := e.r.Account(name)
	require.NoError(t, err)
	released := before.StateUsage - after.StateUsage
	refund := released * e.r.StorageByteCost()
	require.NotZero(t, refund)
	require.JSONEq(t, fmt.Sprint(refund), string(o[0].Value))

	bobAfter, err := e.r.Balance("bob")
	require.NoError(t, err)
	require.Equal(t, bob+refund, bobAfter)
	require.Equal(t, before.Balance-refund, after.Balance)

	var page []resolver.Address
	e.view("get_addresses", nil, &page)
	require.Empty(t, page)
}

func TestSelfDelete(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	o := e.call("bob", "self_delete", map[string]string{"beneficiary": "bob"}, 0)
	requireFailed(t, o[0], resolver.ErrUnauthorized)

	a, _, err := e.r.Account(name)
	require.NoError(t, err)
	bob, err := e.r.Balance("bob")
	require.NoError(t, err)

	o = e.call("alice", "self_delete", map[string]string{"beneficiary": "bob"}, 0)
	require.Len(t, o, 3)
	for _, oc := range o {
		require.Equal(t, chain.Committed, oc.Status, oc.Error)
	}
	_, exists, err := e.r.Account(name)
	require.NoError(t, err)
	require.False(t, exists)

	bobAfter, err := e.r.Balance("bob")
	require.NoError(t, err)
	require.Equal(t, bob+a.Balance, bobAfter)
}
