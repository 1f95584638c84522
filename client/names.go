// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	ajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/registry"
	"github.com/navara-labs/nnsvm/resolver"
)

var ErrRolledBack = errors.New("receipt rolled back")

// Names drives the registry of the connected node.
type Names struct {
	cli      Client
	registry chain.AccountID
}

// NewNames looks up the registry account in the node genesis.
func NewNames(cli Client) (*Names, error) {
	_, reg, err := cli.Genesis()
	if err != nil {
		return nil, err
	}
	return &Names{cli: cli, registry: reg}, nil
}

func (n *Names) Registry() chain.AccountID { return n.registry }

// Resolver is the account the resolver of [name] is deployed at.
func (n *Names) Resolver(name string) chain.AccountID {
	return registry.ResolverAccount(name, n.registry)
}

// Execute submits a call under a fresh nonce and waits for every receipt it
// spawns. The returned error wraps [ErrRolledBack] when any of them failed.
func Execute(ctx context.Context, cli Client, signer, receiver chain.AccountID, method string, args interface{}, deposit uint64) ([]*chain.Outcome, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	txID, err := cli.SubmitCall(&chain.Call{
		Signer:   signer,
		Receiver: receiver,
		Method:   method,
		Args:     raw,
		Deposit:  deposit,
		Nonce:    uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}
	color.Yellow("issued %s.%s as %s (deposit=%d, txId=%s)", receiver, method, signer, deposit, txID)
	outcomes, err := cli.PollTx(ctx, txID)
	if err != nil {
		return nil, err
	}
	return outcomes, firstFailure(txID, outcomes)
}

func firstFailure(txID ids.ID, outcomes []*chain.Outcome) error {
	for _, o := range outcomes {
		if o.Status == chain.RolledBack {
			return fmt.Errorf("%w: %s on %s: %s", ErrRolledBack, txID, o.Receiver, o.Error)
		}
	}
	return nil
}

func (n *Names) call(ctx context.Context, signer chain.AccountID, method string, args interface{}, deposit uint64) ([]*chain.Outcome, error) {
	return Execute(ctx, n.cli, signer, n.registry, method, args, deposit)
}

func (n *Names) PricePerYear() (uint64, error) {
	var p ajson.Uint64
	err := n.cli.View(n.registry, "price_per_year", nil, &p)
	return uint64(p), err
}

// Register pays for [years] of [name] on behalf of [signer], with
// [owner] receiving a newly minted name.
func (n *Names) Register(ctx context.Context, signer chain.AccountID, name string, owner chain.AccountID, years uint64) ([]*chain.Outcome, error) {
	price, err := n.PricePerYear()
	if err != nil {
		return nil, err
	}
	return n.call(ctx, signer, "register", &registry.RegisterArgs{TokenID: name, TokenOwnerID: owner},
		registry.RegisterOverhead+years*price)
}

// Extend adds [years] to a live name held by [signer].
func (n *Names) Extend(ctx context.Context, signer chain.AccountID, name string, years uint64) ([]*chain.Outcome, error) {
	price, err := n.PricePerYear()
	if err != nil {
		return nil, err
	}
	return n.call(ctx, signer, "extend", &registry.TokenArgs{TokenID: name}, years*price)
}

// Setup deploys the resolver of [name], attaching one unit above the
// minimum funding.
func (n *Names) Setup(ctx context.Context, signer chain.AccountID, name string) ([]*chain.Outcome, error) {
	var min ajson.Uint64
	if err := n.cli.View(n.registry, "get_min_attach_balance", &registry.OwnerArgs{OwnerID: signer}, &min); err != nil {
		return nil, err
	}
	return n.call(ctx, signer, "setup", &registry.TokenArgs{TokenID: name}, uint64(min)+1)
}

func (n *Names) TakeOwnership(ctx context.Context, signer chain.AccountID, name string) ([]*chain.Outcome, error) {
	return n.call(ctx, signer, "take_ownership", &registry.TokenArgs{TokenID: name}, 0)
}

func (n *Names) SetDefault(ctx context.Context, signer chain.AccountID, name string) ([]*chain.Outcome, error) {
	return n.call(ctx, signer, "set_default", &registry.TokenArgs{TokenID: name}, 0)
}

func (n *Names) RemoveDefault(ctx context.Context, signer chain.AccountID) ([]*chain.Outcome, error) {
	return n.call(ctx, signer, "remove_default", nil, 0)
}

func (n *Names) Transfer(ctx context.Context, signer chain.AccountID, name string, receiver chain.AccountID) ([]*chain.Outcome, error) {
	return n.call(ctx, signer, "nft_transfer", &registry.TransferArgs{ReceiverID: receiver, TokenID: name}, 1)
}

// ExpiredDate returns nil for names never registered.
func (n *Names) ExpiredDate(name string) (*uint64, error) {
	var v *ajson.Uint64
	if err := n.cli.View(n.registry, "expired_date", &registry.TokenArgs{TokenID: name}, &v); err != nil || v == nil {
		return nil, err
	}
	exp := uint64(*v)
	return &exp, nil
}

func (n *Names) DefaultName(account chain.AccountID) (*string, error) {
	var v *string
	err := n.cli.View(n.registry, "default_name", &registry.AccountArgs{AccountID: account}, &v)
	return v, err
}

// Holder returns "" when [name] was never minted.
func (n *Names) Holder(name string) (chain.AccountID, error) {
	var tok *struct {
		OwnerID chain.AccountID `json:"owner_id"`
	}
	if err := n.cli.View(n.registry, "nft_token", &registry.TokenArgs{TokenID: name}, &tok); err != nil || tok == nil {
		return "", err
	}
	return tok.OwnerID, nil
}

// Resolve looks up the [network] address stored by the resolver of [name].
func (n *Names) Resolve(name string, network string) (*string, error) {
	var v resolver.Address
	err := n.cli.View(n.Resolver(name), "resolve", map[string]string{"network": network}, &v)
	return v.Address, err
}

func (n *Names) SetAddresses(ctx context.Context, signer chain.AccountID, name string, addresses map[string]string) ([]*chain.Outcome, error) {
	return Execute(ctx, n.cli, signer, n.Resolver(name), "set_addresses", map[string]interface{}{"addresses": addresses}, 0)
}

func (n *Names) SetTextRecords(ctx context.Context, signer chain.AccountID, name string, records map[string]string) ([]*chain.Outcome, error) {
	return Execute(ctx, n.cli, signer, n.Resolver(name), "set_text_records", map[string]interface{}{"records": records}, 0)
}

func (n *Names) TextRecords(name string) (map[string]string, error) {
	v := map[string]string{}
	err := n.cli.View(n.Resolver(name), "get_text_records", nil, &v)
	return v, err
}

func (n *Names) SetIPFS(ctx context.Context, signer chain.AccountID, name string, value string) ([]*chain.Outcome, error) {
	return Execute(ctx, n.cli, signer, n.Resolver(name), "set_ipfs", map[string]string{"value": value}, 0)
}
