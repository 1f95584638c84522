// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package resolver is the per-name contract holding the records of one
// registered name. It is deployed by the registry as "<name>.<registry>"
// and only accepts ownership changes relayed by that registry.
package resolver

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/owner"
)

const (
	CodeName = "resolver"
	// CodeSize is what a deployed resolver stakes for its code.
	CodeSize = 180_000

	MaxTextRecords = 10

	NewMethod          = "new"
	OwnerChangedMethod = "owner_changed"

	Icon = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 288 288'%3E%3Cpath d='M72 87.8v113.4a15.3 15.3 0 0 0 28.4 8l30.1-44.7-34.4 21.5V104.6l89.7 107a15.3 15.3 0 0 0 11.7 5.4h3.1a15.3 15.3 0 0 0 15.4-15.3V87.8a15.3 15.3 0 0 0-28.4-8l-30.1 44.7 34.3-21.5v80.5l-89.7-107A15.3 15.3 0 0 0 90.5 72.5h-3.1A15.3 15.3 0 0 0 72 87.8Z'/%3E%3C/svg%3E"
)

// Layout of a resolver account:
//   registry -> account allowed to relay owner changes
//   ipfs     -> ipfs pointer
//   icon     -> icon data url
//   owner/   -> owner role
//   addr/    -> [network] -> address
//   text/    -> [key] -> value
var (
	registryKey = []byte("registry")
	ipfsKey     = []byte("ipfs")
	iconKey     = []byte("icon")

	addressPrefix = []byte("addr")
	textPrefix    = []byte("text")
)

// Code is the deployable resolver bundle.
var Code = &chain.Code{
	Name: CodeName,
	Size: CodeSize,
	New:  func() chain.Contract { return &Contract{} },
}

// Args is the initializer payload sent by the registry.
type Args struct {
	OwnerID chain.AccountID `json:"owner_id"`
}

type Contract struct{}

// state binds the storage of one resolver for the duration of a call.
type state struct {
	ctx       *chain.CallContext
	db        database.Database
	owner     *owner.Owner
	addresses database.Database
	text      database.Database
}

func load(ctx *chain.CallContext) *state {
	return &state{
		ctx:       ctx,
		db:        ctx.Database,
		owner:     owner.New(ctx.Database),
		addresses: prefixdb.New(addressPrefix, ctx.Database),
		text:      prefixdb.New(textPrefix, ctx.Database),
	}
}

func (*Contract) Call(ctx *chain.CallContext, method string, args []byte) ([]byte, error) {
	s := load(ctx)
	if method == NewMethod {
		var a Args
		if err := chain.DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, s.init(a.OwnerID)
	}

	if _, err := s.registry(); err != nil {
		return nil, err
	}
	if v, ok, err := s.owner.Handle(ctx, method, args); ok {
		return v, err
	}

	var (
		v   interface{}
		err error
	)
	switch method {
	case OwnerChangedMethod:
		var a Args
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.ownerChanged(a.OwnerID)
		}
	case "set_addresses":
		var a struct {
			Addresses map[string]string `json:"addresses"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setAddresses(a.Addresses)
		}
	case "get_addresses":
		var a struct {
			FromIndex uint64  `json:"from_index"`
			Limit     *uint64 `json:"limit"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.getAddresses(a.FromIndex, a.Limit)
		}
	case "resolve":
		var a struct {
			Network string `json:"network"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.resolve(a.Network)
		}
	case "set_text_records":
		var a struct {
			Records map[string]string `json:"records"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setTextRecords(a.Records)
		}
	case "get_text_records":
		v, err = s.textRecords()
	case "set_ipfs":
		var a struct {
			Value string `json:"value"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setIPFS(a.Value)
		}
	case "ipfs":
		v, err = s.optional(ipfsKey)
	case "icon":
		v, err = s.optional(iconKey)
	case "clear":
		var a struct {
			Beneficiary chain.AccountID `json:"beneficiary"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.clear(a.Beneficiary)
		}
	case "self_delete":
		var a struct {
			Beneficiary chain.AccountID `json:"beneficiary"`
		}
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.selfDelete(a.Beneficiary)
		}
	case "registry":
		v, err = s.registry()
	default:
		return nil, fmt.Errorf("%w: %s", chain.ErrMethodNotFound, method)
	}
	if err != nil {
		return nil, err
	}
	return chain.EncodeResult(v)
}

// init records the predecessor as the registry and [ownerID] as owner.
func (s *state) init(ownerID chain.AccountID) error {
	has, err := s.db.Has(registryKey)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyInitialized
	}
	if err := s.db.Put(registryKey, []byte(s.ctx.Predecessor)); err != nil {
		return err
	}
	if err := s.owner.Init(ownerID); err != nil {
		return err
	}
	s.ctx.Logger().Info("resolver initialized", "registry", s.ctx.Predecessor, "owner", ownerID)
	return s.db.Put(iconKey, []byte(Icon))
}

func (s *state) registry() (chain.AccountID, error) {
	v, err := s.db.Get(registryKey)
	if err == database.ErrNotFound {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", err
	}
	return chain.AccountID(v), nil
}

// ownerChanged accepts an owner pushed by the registry on behalf of the
// signer and returns the previous owner.
func (s *state) ownerChanged(newOwner chain.AccountID) (chain.AccountID, error) {
	registry, err := s.registry()
	if err != nil {
		return "", err
	}
	if s.ctx.Predecessor != registry {
		return "", fmt.Errorf("%w: only %s relays owner changes", ErrUnauthorized, registry)
	}
	prev, _, err := s.owner.Get()
	if err != nil {
		return "", err
	}
	if s.ctx.Signer == prev {
		return "", fmt.Errorf("%w: %s already owns %s", ErrOwnerUnchanged, prev, s.ctx.Current)
	}
	if err := s.owner.Update(newOwner); err != nil {
		return "", err
	}
	s.ctx.Logger().Info("resolver owner changed", "previous", prev, "owner", newOwner)
	return prev, nil
}

func (s *state) requireOwner() error {
	if err := s.owner.Require(s.ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

func (s *state) selfDelete(beneficiary chain.AccountID) error {
	if err := s.requireOwner(); err != nil {
		return err
	}
	if err := beneficiary.Verify(); err != nil {
		return err
	}
	return s.ctx.Dispatch(chain.NewPromise(s.ctx.Current).DeleteAccount(beneficiary))
}
