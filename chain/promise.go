// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"
)

// Promise is a batch of actions against a single receiver, optionally
// followed by a continuation that observes the batch outcome as promise
// result 0.
type Promise struct {
	receiver AccountID
	actions  []Action
	then     *Promise
}

func NewPromise(receiver AccountID) *Promise {
	return &Promise{receiver: receiver}
}

func (p *Promise) Receiver() AccountID { return p.receiver }

func (p *Promise) Actions() []Action { return p.actions }

func (p *Promise) add(a Action) *Promise {
	p.actions = append(p.actions, a)
	return p
}

func (p *Promise) CreateAccount() *Promise {
	return p.add(&CreateAccount{})
}

func (p *Promise) Transfer(amount uint64) *Promise {
	return p.add(&Transfer{Amount: amount})
}

func (p *Promise) DeployContract(code string) *Promise {
	return p.add(&DeployContract{Code: code})
}

func (p *Promise) FunctionCall(method string, args []byte, deposit uint64) *Promise {
	return p.add(&FunctionCall{Method: method, Args: args, Attached: deposit})
}

// FunctionCallJSON is FunctionCall with [args] encoded as JSON.
func (p *Promise) FunctionCallJSON(method string, args interface{}, deposit uint64) (*Promise, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return p.FunctionCall(method, b, deposit), nil
}

func (p *Promise) DeleteAccount(beneficiary AccountID) *Promise {
	return p.add(&DeleteAccount{Beneficiary: beneficiary})
}

// Then schedules [next] after the last promise of the chain and returns the
// head of the chain.
func (p *Promise) Then(next *Promise) *Promise {
	tail := p
	for tail.then != nil {
		tail = tail.then
	}
	tail.then = next
	return p
}

// Next returns the continuation of [p], if any.
func (p *Promise) Next() *Promise { return p.then }

// deposit is the total value the batch moves out of the creating account.
func (p *Promise) deposit() (uint64, error) {
	total := uint64(0)
	for _, a := range p.actions {
		d := a.Deposit()
		if total+d < total {
			return 0, ErrBalanceOverflow
		}
		total += d
	}
	return total, nil
}

// PromiseResult is what a continuation observes about its predecessor.
type PromiseResult struct {
	Status Status `serialize:"true" json:"status"`
	Value  []byte `serialize:"true" json:"value,omitempty"`
	Error  string `serialize:"true" json:"error,omitempty"`
}

func (r PromiseResult) Failed() bool { return r.Status != Committed }
