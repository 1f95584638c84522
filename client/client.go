// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client implements "nnsvm" client SDK.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	ajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"
	log "github.com/inconshreveable/log15"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/vm"
)

const DefaultPollInterval = time.Second

// Client defines nnsvm client operations.
type Client interface {
	// Pings the VM.
	Ping() (bool, error)
	// Version of the node.
	Version() (string, error)

	// Returns the VM genesis and the registry account it deploys.
	Genesis() (*chain.Genesis, chain.AccountID, error)
	// Accepted fetches the ID and height of the last accepted block.
	Accepted() (ids.ID, uint64, error)

	// Balance returns the balance of an account.
	Balance(account chain.AccountID) (uint64, error)
	// Account returns the account record, if any.
	Account(account chain.AccountID) (*chain.Account, bool, error)

	// Queues a call and returns the transaction ID.
	SubmitCall(c *chain.Call) (ids.ID, error)
	// Runs a read-only method of [receiver] and decodes its result into
	// [reply].
	View(receiver chain.AccountID, method string, args interface{}, reply interface{}) error

	// Returns the finalized receipts of a transaction and whether some are
	// still pending.
	TxStatus(txID ids.ID) ([]*chain.Outcome, bool, error)
	// Polls the transaction until all of its receipts are finalized.
	PollTx(ctx context.Context, txID ids.ID) ([]*chain.Outcome, error)

	// Latest finalized receipts, newest first.
	RecentActivity(limit int) ([]*chain.Outcome, error)
}

type Op struct {
	pollInterval time.Duration
}

type OpOption func(*Op)

func (op *Op) applyOpts(opts []OpOption) {
	for _, opt := range opts {
		opt(op)
	}
}

// WithPollInterval sets how often [PollTx] checks the transaction.
func WithPollInterval(d time.Duration) OpOption {
	return func(op *Op) {
		op.pollInterval = d
	}
}

// New creates a new client object.
func New(uri string, reqTimeout time.Duration, opts ...OpOption) Client {
	op := &Op{pollInterval: DefaultPollInterval}
	op.applyOpts(opts)

	req := rpc.NewEndpointRequester(
		uri,
		vm.PublicEndpoint,
		vm.Name,
		reqTimeout,
	)
	return &client{req: req, pollInterval: op.pollInterval}
}

type client struct {
	req          rpc.EndpointRequester
	pollInterval time.Duration
}

func (cli *client) Ping() (bool, error) {
	resp := new(vm.PingReply)
	err := cli.req.SendRequest(
		"ping",
		nil,
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) Version() (string, error) {
	resp := new(vm.VersionReply)
	if err := cli.req.SendRequest("version", nil, resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

func (cli *client) Genesis() (*chain.Genesis, chain.AccountID, error) {
	resp := new(vm.GenesisReply)
	err := cli.req.SendRequest(
		"genesis",
		nil,
		resp,
	)
	return resp.Genesis, resp.Registry, err
}

func (cli *client) Accepted() (ids.ID, uint64, error) {
	resp := new(vm.LastAcceptedReply)
	if err := cli.req.SendRequest(
		"lastAccepted",
		nil,
		resp,
	); err != nil {
		return ids.Empty, 0, err
	}
	return resp.BlockID, uint64(resp.Height), nil
}

func (cli *client) Balance(account chain.AccountID) (uint64, error) {
	resp := new(vm.BalanceReply)
	if err := cli.req.SendRequest(
		"balance",
		&vm.AccountArgs{Account: account},
		resp,
	); err != nil {
		return 0, err
	}
	return uint64(resp.Balance), nil
}

func (cli *client) Account(account chain.AccountID) (*chain.Account, bool, error) {
	resp := new(vm.AccountReply)
	if err := cli.req.SendRequest(
		"account",
		&vm.AccountArgs{Account: account},
		resp,
	); err != nil {
		return nil, false, err
	}
	return resp.Account, resp.Exists, nil
}

func (cli *client) SubmitCall(c *chain.Call) (ids.ID, error) {
	resp := new(vm.SubmitCallReply)
	if err := cli.req.SendRequest(
		"submitCall",
		&vm.SubmitCallArgs{
			Signer:   c.Signer,
			Receiver: c.Receiver,
			Method:   c.Method,
			Args:     c.Args,
			Deposit:  ajson.Uint64(c.Deposit),
			Nonce:    c.Nonce,
		},
		resp,
	); err != nil {
		return ids.Empty, err
	}
	return resp.TxID, nil
}

func (cli *client) View(receiver chain.AccountID, method string, args interface{}, reply interface{}) error {
	b, err := json.Marshal(args)
	if err != nil {
		return err
	}
	resp := new(vm.ViewReply)
	if err := cli.req.SendRequest(
		"view",
		&vm.ViewArgs{Receiver: receiver, Method: method, Args: b},
		resp,
	); err != nil {
		return err
	}
	return json.Unmarshal(resp.Result, reply)
}

func (cli *client) TxStatus(txID ids.ID) ([]*chain.Outcome, bool, error) {
	resp := new(vm.TxStatusReply)
	if err := cli.req.SendRequest(
		"txStatus",
		&vm.TxStatusArgs{TxID: txID},
		resp,
	); err != nil {
		return nil, false, err
	}
	return resp.Outcomes, resp.Pending, nil
}

func (cli *client) PollTx(ctx context.Context, txID ids.ID) ([]*chain.Outcome, error) {
done:
	for ctx.Err() == nil {
		select {
		case <-time.After(cli.pollInterval):
		case <-ctx.Done():
			break done
		}

		outcomes, pending, err := cli.TxStatus(txID)
		if err != nil {
			log.Warn("polling transaction failed", "txId", txID, "err", err)
			continue
		}
		if !pending {
			return outcomes, nil
		}
	}
	return nil, ctx.Err()
}

func (cli *client) RecentActivity(limit int) ([]*chain.Outcome, error) {
	resp := new(vm.RecentActivityReply)
	if err := cli.req.SendRequest(
		"recentActivity",
		&vm.RecentActivityArgs{Limit: limit},
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Activity, nil
}
