// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry_test

import (
	"testing"

	ajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/stretchr/testify/require"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/nft"
	"github.com/navara-labs/nnsvm/owner"
	"github.com/navara-labs/nnsvm/registry"
	"github.com/navara-labs/nnsvm/resolver"
)

func TestRegistrationLifecycle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	// Two years paid up front.
	start := h.nowMs()
	outcomes := h.register("alice", "alice", "alice", 2)
	require.Len(t, outcomes, 3)
	requireCommitted(t, outcomes)
	require.JSONEq(t, "false", string(outcomes[2].Value))
	require.Equal(t, start+2*registry.OneYearMillisecond, *h.expiry("alice"))
	require.Equal(t, chain.AccountID("alice"), h.holder("alice"))

	var tok nft.Token
	h.view(reg, "nft_token", &registry.TokenArgs{TokenID: "alice"}, &tok)
	require.Equal(t, "alice.nns", tok.Metadata.Title)
	require.Equal(t, uint64(1), tok.Metadata.Copies)

	// Live names cannot be taken; the deposit comes back.
	before := h.balance("bob")
	outcomes = h.register("bob", "alice", "bob", 1)
	requireFailed(t, outcomes[0], registry.ErrUnexpired)
	require.Equal(t, before, h.balance("bob"))

	requireCommitted(t, h.call("alice", reg, "set_default", &registry.TokenArgs{TokenID: "alice"}, 0))
	require.Equal(t, "alice", *h.defaultName("alice"))

	// Once expired, anyone captures the name. The signer receives it, not
	// the owner passed in the call.
	h.advance(3 * registry.OneYearMillisecond)
	outcomes = h.register("carol", "alice", "bob", 1)
	requireCommitted(t, outcomes)
	require.Equal(t, chain.AccountID("carol"), h.holder("alice"))
	require.Equal(t, h.nowMs()+registry.OneYearMillisecond, *h.expiry("alice"))
	require.Nil(t, h.defaultName("alice"))

	// Resolver deployment.
	var min ajson.Uint64
	h.view(reg, "get_min_attach_balance", &registry.OwnerArgs{OwnerID: "carol"}, &min)
	require.NotZero(t, min)

	outcomes = h.call("carol", reg, "setup", &registry.TokenArgs{TokenID: "alice"}, uint64(min))
	requireFailed(t, outcomes[0], registry.ErrInsufficientDeposit)

	outcomes = h.call("bob", reg, "setup", &registry.TokenArgs{TokenID: "alice"}, uint64(min)+1)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)

	outcomes = h.call("carol", reg, "setup", &registry.TokenArgs{TokenID: "alice"}, uint64(min)+1)
	require.Len(t, outcomes, 3)
	requireCommitted(t, outcomes)
	resolverID := registry.ResolverAccount("alice", reg)
	a, exists, err := h.r.Account(resolverID)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, resolver.CodeName, a.Code)
	require.Equal(t, uint64(min), a.Balance)

	var resolverOwner chain.AccountID
	h.view(resolverID, owner.GetOwnerMethod, nil, &resolverOwner)
	require.Equal(t, chain.AccountID("carol"), resolverOwner)
	var resolverRegistry chain.AccountID
	h.view(resolverID, "registry", nil, &resolverRegistry)
	require.Equal(t, reg, resolverRegistry)

	// A second deployment fails and the whole deposit is refunded.
	before = h.balance("carol")
	outcomes = h.call("carol", reg, "setup", &registry.TokenArgs{TokenID: "alice"}, uint64(min)+1)
	require.Len(t, outcomes, 4)
	require.Equal(t, chain.RolledBack, outcomes[1].Status)
	require.JSONEq(t, "true", string(outcomes[2].Value))
	require.Equal(t, before, h.balance("carol"))

	// Only the registry relays owner changes.
	outcomes = h.call("mallory", resolverID, resolver.OwnerChangedMethod, &resolver.Args{OwnerID: "mallory"}, 0)
	requireFailed(t, outcomes[0], resolver.ErrUnauthorized)

	// Ownership push after a transfer.
	requireCommitted(t, h.call("carol", reg, "nft_transfer", &registry.TransferArgs{ReceiverID: "bob", TokenID: "alice"}, 1))
	outcomes = h.call("bob", reg, "take_ownership", &registry.TokenArgs{TokenID: "alice"}, 0)
	require.Len(t, outcomes, 2)
	requireCommitted(t, outcomes)
	require.JSONEq(t, `"carol"`, string(outcomes[1].Value))
	h.view(resolverID, owner.GetOwnerMethod, nil, &resolverOwner)
	require.Equal(t, chain.AccountID("bob"), resolverOwner)

	outcomes = h.call("carol", reg, "take_ownership", &registry.TokenArgs{TokenID: "alice"}, 0)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)

	// The holder re-asserting ownership is a no-op the resolver rejects.
	outcomes = h.call("bob", reg, "take_ownership", &registry.TokenArgs{TokenID: "alice"}, 0)
	requireFailed(t, outcomes[1], resolver.ErrOwnerUnchanged)
}

func TestSameBlockRegistration(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	start := h.nowMs()
	aliceBefore, bobBefore := h.balance("alice"), h.balance("bob")

	first := h.submit("alice", reg, "register", &registry.RegisterArgs{TokenID: "race", TokenOwnerID: "alice"},
		registry.RegisterOverhead+3*registry.DefaultPricePerYear)
	second := h.submit("bob", reg, "register", &registry.RegisterArgs{TokenID: "race", TokenOwnerID: "bob"},
		registry.RegisterOverhead+registry.DefaultPricePerYear)
	require.NoError(t, h.r.Settle(16))

	// The first registration wins and keeps its expiry.
	requireCommitted(t, h.outcomes(first))
	require.Equal(t, chain.AccountID("alice"), h.holder("race"))
	require.Equal(t, start+3*registry.OneYearMillisecond, *h.expiry("race"))
	require.Equal(t, aliceBefore-registry.RegisterOverhead-3*registry.DefaultPricePerYear, h.balance("alice"))

	// The second one loses the race and is refunded all but the overhead.
	outcomes := h.outcomes(second)
	require.Len(t, outcomes, 4)
	require.Equal(t, chain.Committed, outcomes[0].Status)
	requireFailed(t, outcomes[1], registry.ErrUnexpired)
	require.Equal(t, chain.Committed, outcomes[2].Status)
	require.JSONEq(t, "true", string(outcomes[2].Value))
	require.Equal(t, chain.Committed, outcomes[3].Status)
	require.Equal(t, bobBefore-registry.RegisterOverhead, h.balance("bob"))
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	tt := []struct {
		name    string
		owner   chain.AccountID
		deposit uint64
		err     error
	}{
		{"Bad", "alice", 2 * units.Avax, nil},
		{"ok", "alice", registry.RegisterOverhead - 1, registry.ErrInsufficientDeposit},
		{"ok", "alice", registry.RegisterOverhead + registry.DefaultPricePerYear - 1, registry.ErrInsufficientDeposit},
		{"ok", "A", 2 * units.Avax, nil},
	}
	for _, tv := range tt {
		before := h.balance("alice")
		outcomes := h.call("alice", reg, "register", &registry.RegisterArgs{TokenID: tv.name, TokenOwnerID: tv.owner}, tv.deposit)
		require.Len(t, outcomes, 1)
		require.Equal(t, chain.RolledBack, outcomes[0].Status)
		if tv.err != nil {
			require.Contains(t, outcomes[0].Error, tv.err.Error())
		}
		require.Equal(t, before, h.balance("alice"))
	}

	// Remainders below a full year are kept.
	start := h.nowMs()
	requireCommitted(t, h.call("alice", reg, "register", &registry.RegisterArgs{TokenID: "odd", TokenOwnerID: "alice"},
		registry.RegisterOverhead+registry.DefaultPricePerYear*3/2))
	require.Equal(t, start+registry.OneYearMillisecond, *h.expiry("odd"))
}

func TestExtend(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	start := h.nowMs()
	requireCommitted(t, h.register("alice", "name", "alice", 1))

	outcomes := h.call("bob", reg, "extend", &registry.TokenArgs{TokenID: "name"}, registry.DefaultPricePerYear)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)

	outcomes = h.call("alice", reg, "extend", &registry.TokenArgs{TokenID: "name"}, registry.DefaultPricePerYear/2)
	requireFailed(t, outcomes[0], registry.ErrInvalidExpiration)

	outcomes = h.call("alice", reg, "extend", &registry.TokenArgs{TokenID: "name"}, 2*registry.DefaultPricePerYear)
	requireCommitted(t, outcomes)
	want := start + 3*registry.OneYearMillisecond
	require.Equal(t, want, *h.expiry("name"))

	h.advance(4 * registry.OneYearMillisecond)
	outcomes = h.call("alice", reg, "extend", &registry.TokenArgs{TokenID: "name"}, registry.DefaultPricePerYear)
	requireFailed(t, outcomes[0], registry.ErrNameExpired)
	require.Equal(t, want, *h.expiry("name"))

	require.Nil(t, h.expiry("unknown"))
}

func TestDefaultNames(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	requireCommitted(t, h.register("alice", "alice", "alice", 1))
	requireCommitted(t, h.register("alice", "wonder", "alice", 1))

	outcomes := h.call("bob", reg, "set_default", &registry.TokenArgs{TokenID: "alice"}, 0)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)

	requireCommitted(t, h.call("alice", reg, "set_default", &registry.TokenArgs{TokenID: "alice"}, 0))
	requireCommitted(t, h.call("alice", reg, "set_default", &registry.TokenArgs{TokenID: "wonder"}, 0))
	require.Equal(t, "wonder", *h.defaultName("alice"))

	// Pointing at a name before it exists; minting it elsewhere drops the
	// pointer.
	requireCommitted(t, h.call("bob", reg, "set_default", &registry.TokenArgs{TokenID: "future"}, 0))
	requireCommitted(t, h.call("carol", reg, "set_default", &registry.TokenArgs{TokenID: "future"}, 0))
	requireCommitted(t, h.register("alice", "future", "carol", 1))
	require.Nil(t, h.defaultName("bob"))
	require.Equal(t, "future", *h.defaultName("carol"))

	// Transfers release the sender's pointer.
	requireCommitted(t, h.call("alice", reg, "nft_transfer", &registry.TransferArgs{ReceiverID: "bob", TokenID: "wonder"}, 1))
	require.Nil(t, h.defaultName("alice"))

	requireCommitted(t, h.call("carol", reg, "remove_default", nil, 0))
	require.Nil(t, h.defaultName("carol"))
}

func TestTransfers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	requireCommitted(t, h.register("alice", "kept", "alice", 1))
	requireCommitted(t, h.register("alice", "returned", "alice", 1))
	requireCommitted(t, h.call("alice", reg, "set_default", &registry.TokenArgs{TokenID: "kept"}, 0))

	outcomes := h.call("alice", reg, "nft_transfer", &registry.TransferArgs{ReceiverID: "bob", TokenID: "kept"}, 0)
	requireFailed(t, outcomes[0], nft.ErrOneUnitRequired)

	outcomes = h.call("alice", reg, "nft_transfer_call", &registry.TransferArgs{ReceiverID: "market", TokenID: "kept", Msg: "keep"}, 1)
	require.Len(t, outcomes, 3)
	requireCommitted(t, outcomes)
	require.JSONEq(t, "true", string(outcomes[2].Value))
	require.Equal(t, chain.AccountID("market"), h.holder("kept"))
	require.Nil(t, h.defaultName("alice"))

	outcomes = h.call("alice", reg, "nft_transfer_call", &registry.TransferArgs{ReceiverID: "market", TokenID: "returned", Msg: "no thanks"}, 1)
	requireCommitted(t, outcomes)
	require.JSONEq(t, "false", string(outcomes[2].Value))
	require.Equal(t, chain.AccountID("alice"), h.holder("returned"))

	// Expired names are frozen.
	h.advance(2 * registry.OneYearMillisecond)
	outcomes = h.call("alice", reg, "nft_transfer", &registry.TransferArgs{ReceiverID: "bob", TokenID: "returned"}, 1)
	requireFailed(t, outcomes[0], registry.ErrExpired)

	// Approved accounts transfer on behalf of the holder.
	requireCommitted(t, h.register("alice", "shared", "alice", 1))
	requireCommitted(t, h.call("alice", reg, "nft_approve", map[string]string{"token_id": "shared", "account_id": "carol"}, 1))
	var approved bool
	h.view(reg, "nft_is_approved", map[string]string{"token_id": "shared", "account_id": "carol"}, &approved)
	require.True(t, approved)
	requireCommitted(t, h.call("carol", reg, "nft_transfer", &registry.TransferArgs{ReceiverID: "bob", TokenID: "shared"}, 1))
	require.Equal(t, chain.AccountID("bob"), h.holder("shared"))

	var supply ajson.Uint64
	h.view(reg, "nft_supply_for_owner", map[string]string{"account_id": "alice"}, &supply)
	require.Equal(t, ajson.Uint64(1), supply)
}

func TestPricing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var price ajson.Uint64
	h.view(reg, "price_per_year", nil, &price)
	require.Equal(t, ajson.Uint64(registry.DefaultPricePerYear), price)

	outcomes := h.call("alice", reg, "set_price", &registry.PriceArgs{Price: 5}, 1)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)
	outcomes = h.call(admin, reg, "set_price", &registry.PriceArgs{Price: 5}, 0)
	requireFailed(t, outcomes[0], registry.ErrOneUnitRequired)
	outcomes = h.call(admin, reg, "set_price", &registry.PriceArgs{Price: 0}, 1)
	requireFailed(t, outcomes[0], registry.ErrInvalidPrice)

	requireCommitted(t, h.call(admin, reg, "set_price", &registry.PriceArgs{Price: ajson.Uint64(2 * units.Avax)}, 1))
	h.view(reg, "price_per_year", nil, &price)
	require.Equal(t, ajson.Uint64(2*units.Avax), price)

	// One year now needs the overhead plus two tokens.
	outcomes = h.register("alice", "pricey", "alice", 1)
	requireFailed(t, outcomes[0], registry.ErrInsufficientDeposit)
	start := h.nowMs()
	requireCommitted(t, h.register("alice", "pricey", "alice", 4))
	require.Equal(t, start+2*registry.OneYearMillisecond, *h.expiry("pricey"))

	requireCommitted(t, h.call(admin, reg, "set_fee_register", &registry.PriceArgs{Price: 7}, 1))
	var fee ajson.Uint64
	h.view(reg, "fee_register", nil, &fee)
	require.Equal(t, ajson.Uint64(7), fee)

	// migrate is only reachable from the registry itself.
	outcomes = h.call(admin, reg, "migrate", &registry.MigrateArgs{FeeRegister: 9}, 0)
	requireFailed(t, outcomes[0], chain.ErrPrivateMethod)
	requireCommitted(t, h.call(reg, reg, "migrate", &registry.MigrateArgs{FeeRegister: 9}, 0))
	h.view(reg, "fee_register", nil, &fee)
	require.Equal(t, ajson.Uint64(9), fee)
	h.view(reg, "price_per_year", nil, &price)
	require.Equal(t, ajson.Uint64(2*units.Avax), price)
}

func TestInit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	outcomes := h.call(admin, reg, "new_default_meta", &registry.OwnerArgs{OwnerID: admin}, 0)
	requireFailed(t, outcomes[0], registry.ErrAlreadyInitialized)

	var md registry.ContractMetadata
	h.view(reg, "nft_metadata", nil, &md)
	require.Equal(t, registry.Symbol, md.Symbol)
	require.Equal(t, registry.MetadataSpec, md.Spec)

	var o chain.AccountID
	h.view(reg, owner.GetOwnerMethod, nil, &o)
	require.Equal(t, admin, o)

	requireCommitted(t, h.call(admin, reg, owner.ProposeOwnerMethod, map[string]string{"account_id": "bob"}, 0))
	requireCommitted(t, h.call("bob", reg, owner.AcceptOwnerMethod, nil, 0))
	requireCommitted(t, h.call("bob", reg, "set_fee_register", &registry.PriceArgs{Price: 1}, 1))
	outcomes = h.call(admin, reg, "set_fee_register", &registry.PriceArgs{Price: 1}, 1)
	requireFailed(t, outcomes[0], registry.ErrUnauthorized)
}
