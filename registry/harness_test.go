// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry_test

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/stretchr/testify/require"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/registry"
	"github.com/navara-labs/nnsvm/resolver"
)

const (
	reg   chain.AccountID = "registry"
	admin chain.AccountID = "admin"
)

var users = []chain.AccountID{"alice", "bob", "carol", "mallory"}

type testingT interface {
	require.TestingT
	Helper()
}

// market keeps tokens sent with msg "keep" and returns the rest.
type market struct{}

func (market) Call(ctx *chain.CallContext, method string, args []byte) ([]byte, error) {
	if method != "nft_on_transfer" {
		return nil, chain.ErrMethodNotFound
	}
	var a struct {
		Msg string `json:"msg"`
	}
	if err := chain.DecodeArgs(args, &a); err != nil {
		return nil, err
	}
	return chain.EncodeResult(a.Msg != "keep")
}

type harness struct {
	t     testingT
	r     *chain.Runtime
	now   time.Time
	nonce int
}

func newHarness(t testingT) *harness {
	h := &harness{t: t, now: time.Unix(1_700_000_000, 0)}
	r, err := chain.New(memdb.New(), chain.WithClock(func() time.Time { return h.now }))
	require.NoError(t, err)
	require.NoError(t, r.RegisterCode(registry.Code))
	require.NoError(t, r.RegisterCode(resolver.Code))
	require.NoError(t, r.RegisterCode(&chain.Code{Name: "market", Size: 100, New: func() chain.Contract { return market{} }}))
	h.r = r

	g := &chain.Genesis{
		StorageByteCost: chain.DefaultStorageByteCost,
		Accounts: []chain.Allocation{
			{
				ID:      reg,
				Balance: 10 * units.Avax,
				Code:    registry.CodeName,
				Init:    &chain.InitCall{Method: "new_default_meta", Args: `{"owner_id":"admin"}`},
			},
			{ID: admin, Balance: 100 * units.Avax},
			{ID: "market", Balance: units.Avax, Code: "market"},
		},
	}
	for _, u := range users {
		g.Accounts = append(g.Accounts, chain.Allocation{ID: u, Balance: 1000 * units.Avax})
	}
	require.NoError(t, g.Verify())
	require.NoError(t, g.Load(r))
	return h
}

func (h *harness) nowMs() uint64 {
	return uint64(h.now.UnixNano() / int64(time.Millisecond))
}

func (h *harness) advance(ms uint64) {
	h.now = h.now.Add(time.Duration(ms) * time.Millisecond)
}

func (h *harness) call(signer, receiver chain.AccountID, method string, args interface{}, deposit uint64) []*chain.Outcome {
	h.t.Helper()

	txID := h.submit(signer, receiver, method, args, deposit)
	require.NoError(h.t, h.r.Settle(16))
	return h.outcomes(txID)
}

// submit schedules a call without settling it.
func (h *harness) submit(signer, receiver chain.AccountID, method string, args interface{}, deposit uint64) ids.ID {
	h.t.Helper()

	b, err := json.Marshal(args)
	require.NoError(h.t, err)
	h.nonce++
	txID, err := h.r.Submit(&chain.Call{
		Signer:   signer,
		Receiver: receiver,
		Method:   method,
		Args:     b,
		Deposit:  deposit,
		Nonce:    fmt.Sprint(h.nonce),
	})
	require.NoError(h.t, err)
	return txID
}

func (h *harness) outcomes(txID ids.ID) []*chain.Outcome {
	h.t.Helper()

	outcomes, pending, err := h.r.TxStatus(txID)
	require.NoError(h.t, err)
	require.False(h.t, pending)
	return outcomes
}

func (h *harness) view(receiver chain.AccountID, method string, args interface{}, v interface{}) {
	h.t.Helper()

	b, err := json.Marshal(args)
	require.NoError(h.t, err)
	out, err := h.r.View(receiver, method, b)
	require.NoError(h.t, err)
	if len(out) == 0 {
		out = []byte("null")
	}
	require.NoError(h.t, json.Unmarshal(out, v))
}

func (h *harness) balance(id chain.AccountID) uint64 {
	h.t.Helper()

	b, err := h.r.Balance(id)
	require.NoError(h.t, err)
	return b
}

func (h *harness) register(signer chain.AccountID, name string, owner chain.AccountID, years uint64) []*chain.Outcome {
	h.t.Helper()

	return h.call(signer, reg, "register", &registry.RegisterArgs{TokenID: name, TokenOwnerID: owner},
		registry.RegisterOverhead+years*registry.DefaultPricePerYear)
}

func (h *harness) expiry(name string) *uint64 {
	h.t.Helper()

	var v *string
	h.view(reg, "expired_date", &registry.TokenArgs{TokenID: name}, &v)
	if v == nil {
		return nil
	}
	var exp uint64
	_, err := fmt.Sscan(*v, &exp)
	require.NoError(h.t, err)
	return &exp
}

func (h *harness) defaultName(account chain.AccountID) *string {
	h.t.Helper()

	var v *string
	h.view(reg, "default_name", &registry.AccountArgs{AccountID: account}, &v)
	return v
}

func (h *harness) holder(name string) chain.AccountID {
	h.t.Helper()

	var tok *struct {
		OwnerID chain.AccountID `json:"owner_id"`
	}
	h.view(reg, "nft_token", &registry.TokenArgs{TokenID: name}, &tok)
	if tok == nil {
		return ""
	}
	return tok.OwnerID
}

func requireCommitted(t testingT, outcomes []*chain.Outcome) {
	t.Helper()

	for _, o := range outcomes {
		require.Equal(t, chain.Committed, o.Status, "%v: %s", o.Actions, o.Error)
	}
}

func requireFailed(t testingT, o *chain.Outcome, err error) {
	t.Helper()

	require.Equal(t, chain.RolledBack, o.Status, "%v", o.Actions)
	require.Contains(t, o.Error, err.Error())
}
