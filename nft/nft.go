// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nft implements non-fungible token bookkeeping (core transfers,
// approvals and enumeration) over a contract's storage namespace.
package nft

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/codec"
)

const (
	OnTransferMethod      = "nft_on_transfer"
	ResolveTransferMethod = "nft_resolve_transfer"
	OnApproveMethod       = "nft_on_approve"

	delimiter = '/'
)

// nft/
//   token/ -> [token id] -> record
//   meta/  -> [token id] -> TokenMetadata (json)
//   owner/ -> [owner id]/[token id] -> nil
var (
	prefix         = []byte("nft")
	tokenPrefix    = []byte("token")
	metadataPrefix = []byte("meta")
	ownerPrefix    = []byte("owner")
)

type TokenMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Copies      uint64 `json:"copies,omitempty"`
	IssuedAt    uint64 `json:"issued_at,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// Token is the external view of a token.
type Token struct {
	TokenID   string                     `json:"token_id"`
	OwnerID   chain.AccountID            `json:"owner_id"`
	Metadata  *TokenMetadata             `json:"metadata,omitempty"`
	Approvals map[chain.AccountID]uint64 `json:"approved_account_ids"`
}

type approval struct {
	Account chain.AccountID `serialize:"true"`
	ID      uint64          `serialize:"true"`
}

type record struct {
	Owner        chain.AccountID `serialize:"true"`
	NextApproval uint64          `serialize:"true"`
	Approvals    []approval      `serialize:"true"`
}

func (r *record) approvals() map[chain.AccountID]uint64 {
	m := make(map[chain.AccountID]uint64, len(r.Approvals))
	for _, a := range r.Approvals {
		m[a.Account] = a.ID
	}
	return m
}

// Collection is the token set stored in one contract.
type Collection struct {
	tokens   database.Database
	metadata database.Database
	owners   database.Database
}

func New(db database.Database) *Collection {
	root := prefixdb.New(prefix, db)
	return &Collection{
		tokens:   prefixdb.New(tokenPrefix, root),
		metadata: prefixdb.New(metadataPrefix, root),
		owners:   prefixdb.New(ownerPrefix, root),
	}
}

func ownerKey(owner chain.AccountID, id string) []byte {
	k := make([]byte, 0, len(owner)+1+len(id))
	k = append(k, owner...)
	k = append(k, delimiter)
	return append(k, id...)
}

func (c *Collection) record(id string) (*record, bool, error) {
	v, err := c.tokens.Get([]byte(id))
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r := new(record)
	if err := codec.Unmarshal(v, r); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (c *Collection) putRecord(id string, r *record) error {
	b, err := codec.Marshal(r)
	if err != nil {
		return err
	}
	return c.tokens.Put([]byte(id), b)
}

// Owner returns the holder of [id].
func (c *Collection) Owner(id string) (chain.AccountID, bool, error) {
	r, ok, err := c.record(id)
	if err != nil || !ok {
		return "", false, err
	}
	return r.Owner, true, nil
}

// Token returns the external view of [id].
func (c *Collection) Token(id string) (*Token, bool, error) {
	r, ok, err := c.record(id)
	if err != nil || !ok {
		return nil, false, err
	}
	t := &Token{TokenID: id, OwnerID: r.Owner, Approvals: r.approvals()}
	v, err := c.metadata.Get([]byte(id))
	switch err {
	case nil:
		t.Metadata = new(TokenMetadata)
		if err := json.Unmarshal(v, t.Metadata); err != nil {
			return nil, false, err
		}
	case database.ErrNotFound:
	default:
		return nil, false, err
	}
	return t, true, nil
}

// Mint creates [id] for [owner].
func (c *Collection) Mint(ctx *chain.CallContext, id string, owner chain.AccountID, metadata *TokenMetadata) (*Token, error) {
	if len(id) == 0 {
		return nil, ErrInvalidTokenID
	}
	if err := owner.Verify(); err != nil {
		return nil, err
	}
	_, exists, err := c.record(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenExists, id)
	}
	if err := c.putRecord(id, &record{Owner: owner}); err != nil {
		return nil, err
	}
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		if err := c.metadata.Put([]byte(id), b); err != nil {
			return nil, err
		}
	}
	if err := c.owners.Put(ownerKey(owner, id), nil); err != nil {
		return nil, err
	}
	ctx.Logger().Info("nft_mint", "owner", owner, "token", id)
	return &Token{TokenID: id, OwnerID: owner, Metadata: metadata, Approvals: map[chain.AccountID]uint64{}}, nil
}

// move reassigns [id] and clears its approvals. It returns the approvals
// the token held before the move.
func (c *Collection) move(id string, r *record, to chain.AccountID) ([]approval, error) {
	if err := c.owners.Delete(ownerKey(r.Owner, id)); err != nil {
		return nil, err
	}
	if err := c.owners.Put(ownerKey(to, id), nil); err != nil {
		return nil, err
	}
	prev := r.Approvals
	r.Owner = to
	r.Approvals = nil
	return prev, c.putRecord(id, r)
}

// TransferUnguarded moves [id] from [from] to [to] without checking
// approvals or deposits.
func (c *Collection) TransferUnguarded(ctx *chain.CallContext, id string, from, to chain.AccountID) error {
	r, ok, err := c.record(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenMissing, id)
	}
	if r.Owner != from {
		return fmt.Errorf("%w: %s held by %s", ErrNotTokenOwner, id, r.Owner)
	}
	if _, err := c.move(id, r, to); err != nil {
		return err
	}
	ctx.Logger().Info("nft_transfer", "token", id, "from", from, "to", to)
	return nil
}

// Transfer moves [id] to [receiver] on behalf of the predecessor, who must
// be the holder or an approved account. It returns the previous owner and
// its approvals.
func (c *Collection) Transfer(
	ctx *chain.CallContext,
	receiver chain.AccountID,
	id string,
	approvalID *uint64,
	memo string,
) (chain.AccountID, map[chain.AccountID]uint64, error) {
	if ctx.AttachedDeposit != 1 {
		return "", nil, ErrOneUnitRequired
	}
	if err := receiver.Verify(); err != nil {
		return "", nil, err
	}
	r, ok, err := c.record(id)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrTokenMissing, id)
	}
	sender := ctx.Predecessor
	if sender != r.Owner {
		approved, ok := r.approvals()[sender]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrNotApproved, sender)
		}
		if approvalID != nil && *approvalID != approved {
			return "", nil, fmt.Errorf("%w: got %d, have %d", ErrApprovalMismatch, *approvalID, approved)
		}
	}
	if r.Owner == receiver {
		return "", nil, ErrSameOwner
	}
	prevOwner := r.Owner
	prev, err := c.move(id, r, receiver)
	if err != nil {
		return "", nil, err
	}
	prevApprovals := (&record{Approvals: prev}).approvals()
	ctx.Logger().Info("nft_transfer", "token", id, "from", prevOwner, "to", receiver, "sender", sender, "memo", memo)
	return prevOwner, prevApprovals, nil
}

type onTransferArgs struct {
	SenderID        chain.AccountID `json:"sender_id"`
	PreviousOwnerID chain.AccountID `json:"previous_owner_id"`
	TokenID         string          `json:"token_id"`
	Msg             string          `json:"msg"`
}

// ResolveTransferArgs are the arguments of nft_resolve_transfer.
type ResolveTransferArgs struct {
	PreviousOwnerID chain.AccountID            `json:"previous_owner_id"`
	ReceiverID      chain.AccountID            `json:"receiver_id"`
	TokenID         string                     `json:"token_id"`
	Approvals       map[chain.AccountID]uint64 `json:"approved_account_ids,omitempty"`
}

// TransferCall transfers [id] and asks [receiver] whether it wants to keep
// it. The answer is settled by nft_resolve_transfer on the current
// contract.
func (c *Collection) TransferCall(
	ctx *chain.CallContext,
	receiver chain.AccountID,
	id string,
	approvalID *uint64,
	memo string,
	msg string,
) error {
	prevOwner, prevApprovals, err := c.Transfer(ctx, receiver, id, approvalID, memo)
	if err != nil {
		return err
	}
	call, err := chain.NewPromise(receiver).FunctionCallJSON(OnTransferMethod, &onTransferArgs{
		SenderID:        ctx.Predecessor,
		PreviousOwnerID: prevOwner,
		TokenID:         id,
		Msg:             msg,
	}, 0)
	if err != nil {
		return err
	}
	resolve, err := chain.NewPromise(ctx.Current).FunctionCallJSON(ResolveTransferMethod, &ResolveTransferArgs{
		PreviousOwnerID: prevOwner,
		ReceiverID:      receiver,
		TokenID:         id,
		Approvals:       prevApprovals,
	}, 0)
	if err != nil {
		return err
	}
	return ctx.Dispatch(call.Then(resolve))
}

// ResolveTransfer settles a TransferCall. The token returns to the previous
// owner when the receiver failed or asked for it back, unless the receiver
// already passed it on. It reports whether the transfer stands.
func (c *Collection) ResolveTransfer(ctx *chain.CallContext, a *ResolveTransferArgs) (bool, error) {
	if err := ctx.RequirePrivate(); err != nil {
		return false, err
	}
	res, err := ctx.PromiseResult(0)
	if err != nil {
		return false, err
	}
	giveBack := true
	if !res.Failed() {
		if err := json.Unmarshal(res.Value, &giveBack); err != nil {
			giveBack = true
		}
	}
	if !giveBack {
		return true, nil
	}
	r, ok, err := c.record(a.TokenID)
	if err != nil {
		return false, err
	}
	if !ok || r.Owner != a.ReceiverID {
		return true, nil
	}
	if _, err := c.move(a.TokenID, r, a.PreviousOwnerID); err != nil {
		return false, err
	}
	for acct, id := range a.Approvals {
		r.Approvals = append(r.Approvals, approval{Account: acct, ID: id})
	}
	sortApprovals(r.Approvals)
	if err := c.putRecord(a.TokenID, r); err != nil {
		return false, err
	}
	ctx.Logger().Info("nft_transfer", "token", a.TokenID, "from", a.ReceiverID, "to", a.PreviousOwnerID)
	return false, nil
}
