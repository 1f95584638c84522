// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"encoding/json"
	"fmt"

	ajson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/resolver"
)

const (
	// ResolverExtraBytes is the storage margin a new resolver is funded
	// for on top of its code.
	ResolverExtraBytes = 10_000

	Icon = resolver.Icon
)

// ResolverAccount is where the resolver of [name] is deployed.
func ResolverAccount(name string, registry chain.AccountID) chain.AccountID {
	return chain.SubAccount(name, registry)
}

// minAttachBalance is the balance a resolver initialized for [owner] is
// funded with.
func (s *state) minAttachBalance(owner chain.AccountID) (uint64, error) {
	args, err := json.Marshal(&resolver.Args{OwnerID: owner})
	if err != nil {
		return 0, err
	}
	bytes := uint64(resolver.CodeSize + ResolverExtraBytes + 2*len(args))
	return bytes*s.ctx.StorageByteCost + 5, nil
}

// setup deploys the resolver of [id] on behalf of its holder. The whole
// attached deposit goes back to the holder if deployment fails.
func (s *state) setup(id string) error {
	holder, err := s.requireHolder(id)
	if err != nil {
		return err
	}
	funding, err := s.minAttachBalance(holder)
	if err != nil {
		return err
	}
	deposited := s.ctx.AttachedDeposit
	if deposited <= funding {
		return fmt.Errorf("%w: %d attached, need more than %d", ErrInsufficientDeposit, deposited, funding)
	}
	deploy, err := chain.NewPromise(ResolverAccount(id, s.ctx.Current)).
		CreateAccount().
		Transfer(funding).
		DeployContract(resolver.CodeName).
		FunctionCallJSON(resolver.NewMethod, &resolver.Args{OwnerID: holder}, 0)
	if err != nil {
		return err
	}
	refund, err := chain.NewPromise(s.ctx.Current).FunctionCallJSON("failure_resolve", &FailureResolveArgs{
		Signer:    holder,
		Deposited: ajson.Uint64(deposited),
	}, 0)
	if err != nil {
		return err
	}
	s.ctx.Logger().Info("deploying resolver", "name", id, "owner", holder, "funding", funding)
	return s.ctx.Dispatch(deploy.Then(refund))
}

// takeOwnership pushes the predecessor as owner of the resolver of [id].
func (s *state) takeOwnership(id string) error {
	holder, err := s.requireHolder(id)
	if err != nil {
		return err
	}
	p, err := chain.NewPromise(ResolverAccount(id, s.ctx.Current)).
		FunctionCallJSON(resolver.OwnerChangedMethod, &resolver.Args{OwnerID: holder}, 0)
	if err != nil {
		return err
	}
	return s.ctx.Dispatch(p)
}
