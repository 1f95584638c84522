// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package owner keeps the owner role of a contract in its own storage
// namespace.
package owner

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"

	"github.com/navara-labs/nnsvm/chain"
)

const (
	GetOwnerMethod     = "own_get_owner"
	GetProposedMethod  = "own_get_proposed_owner"
	ProposeOwnerMethod = "own_propose_owner"
	AcceptOwnerMethod  = "own_accept_owner"
	RenounceMethod     = "own_renounce_owner"
)

var (
	ErrNotOwner           = errors.New("owner only")
	ErrNotProposed        = errors.New("proposed owner only")
	ErrAlreadyInitialized = errors.New("owner already initialized")

	prefix      = []byte("owner")
	ownerKey    = []byte("current")
	proposedKey = []byte("proposed")
)

type Owner struct {
	db database.Database
}

// New reads and writes the owner role inside [db], normally
// [chain.CallContext.Database].
func New(db database.Database) *Owner {
	return &Owner{db: prefixdb.New(prefix, db)}
}

func (o *Owner) get(k []byte) (chain.AccountID, bool, error) {
	v, err := o.db.Get(k)
	if err == database.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return chain.AccountID(v), true, nil
}

// Init sets the first owner. It fails once any owner has been recorded,
// even if it was renounced since.
func (o *Owner) Init(id chain.AccountID) error {
	if err := id.Verify(); err != nil {
		return err
	}
	has, err := o.db.Has(ownerKey)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyInitialized
	}
	return o.db.Put(ownerKey, []byte(id))
}

// Get returns the current owner. A renounced contract has none.
func (o *Owner) Get() (chain.AccountID, bool, error) {
	id, ok, err := o.get(ownerKey)
	if err != nil || !ok || len(id) == 0 {
		return "", false, err
	}
	return id, true, nil
}

func (o *Owner) Proposed() (chain.AccountID, bool, error) {
	return o.get(proposedKey)
}

// Require fails unless the predecessor of [ctx] is the owner.
func (o *Owner) Require(ctx *chain.CallContext) error {
	id, ok, err := o.Get()
	if err != nil {
		return err
	}
	if !ok || id != ctx.Predecessor {
		return fmt.Errorf("%w: called by %s", ErrNotOwner, ctx.Predecessor)
	}
	return nil
}

// Update overwrites the owner without any check and drops a pending
// proposal.
func (o *Owner) Update(id chain.AccountID) error {
	if err := id.Verify(); err != nil {
		return err
	}
	if err := o.db.Delete(proposedKey); err != nil {
		return err
	}
	return o.db.Put(ownerKey, []byte(id))
}

// Propose starts a two step handover to [id]. An empty id withdraws the
// pending proposal.
func (o *Owner) Propose(ctx *chain.CallContext, id chain.AccountID) error {
	if err := o.Require(ctx); err != nil {
		return err
	}
	if len(id) == 0 {
		return o.db.Delete(proposedKey)
	}
	if err := id.Verify(); err != nil {
		return err
	}
	return o.db.Put(proposedKey, []byte(id))
}

func (o *Owner) Accept(ctx *chain.CallContext) error {
	proposed, ok, err := o.Proposed()
	if err != nil {
		return err
	}
	if !ok || proposed != ctx.Predecessor {
		return fmt.Errorf("%w: called by %s", ErrNotProposed, ctx.Predecessor)
	}
	return o.Update(proposed)
}

// Renounce leaves the contract without an owner. The marker stays so that
// Init cannot reclaim the role.
func (o *Owner) Renounce(ctx *chain.CallContext) error {
	if err := o.Require(ctx); err != nil {
		return err
	}
	if err := o.db.Delete(proposedKey); err != nil {
		return err
	}
	return o.db.Put(ownerKey, nil)
}

// Handle serves the own_* methods. It reports false when [method] is not
// one of them.
func (o *Owner) Handle(ctx *chain.CallContext, method string, args []byte) ([]byte, bool, error) {
	var (
		v   interface{}
		err error
	)
	switch method {
	case GetOwnerMethod:
		v, err = o.optional(o.Get())
	case GetProposedMethod:
		v, err = o.optional(o.Proposed())
	case ProposeOwnerMethod:
		var a struct {
			Account chain.AccountID `json:"account_id"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = o.Propose(ctx, a.Account)
		}
	case AcceptOwnerMethod:
		err = o.Accept(ctx)
	case RenounceMethod:
		err = o.Renounce(ctx)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	if v == nil {
		return nil, true, nil
	}
	b, err := json.Marshal(v)
	return b, true, err
}

func (*Owner) optional(id chain.AccountID, ok bool, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return json.RawMessage("null"), nil
	}
	return id, nil
}
