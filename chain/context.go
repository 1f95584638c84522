// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	log "github.com/inconshreveable/log15"
)

// CallContext carries the identity of a function call explicitly: the
// account executing ([Current]), the account that signed the originating
// transaction ([Signer]) and the account that sent this receipt
// ([Predecessor]).
type CallContext struct {
	Current         AccountID
	Signer          AccountID
	Predecessor     AccountID
	AttachedDeposit uint64
	BlockTimestamp  uint64 // milliseconds
	BlockHeight     uint64
	PromiseResults  []PromiseResult
	StorageByteCost uint64
	View            bool

	// Database is the storage namespace of [Current].
	Database database.Database

	account  *Account
	code     *Code
	metered  *meteredDB
	promises []*Promise
	log      log.Logger
}

// Dispatch schedules [p] (and its continuations) once the current call
// succeeds. The value the chain carries is debited from [Current].
func (c *CallContext) Dispatch(p *Promise) error {
	if c.View {
		return ErrPromiseInView
	}
	for n := p; n != nil; n = n.then {
		if len(n.actions) == 0 {
			return ErrEmptyPromise
		}
	}
	c.promises = append(c.promises, p)
	return nil
}

func (c *CallContext) PromiseResult(i int) (PromiseResult, error) {
	if i < 0 || i >= len(c.PromiseResults) {
		return PromiseResult{}, ErrPromiseIndex
	}
	return c.PromiseResults[i], nil
}

// RequirePrivate fails unless the contract is calling itself.
func (c *CallContext) RequirePrivate() error {
	if c.Predecessor != c.Current {
		return fmt.Errorf("%w: called by %s", ErrPrivateMethod, c.Predecessor)
	}
	return nil
}

// Dispatched returns the promises scheduled so far.
func (c *CallContext) Dispatched() []*Promise { return c.promises }

// Balance of [Current], including the attached deposit.
func (c *CallContext) Balance() uint64 {
	if c.account == nil {
		return 0
	}
	return c.account.Balance
}

// StorageUsage is the number of bytes [Current] is staking for, including
// writes made so far in this call.
func (c *CallContext) StorageUsage() uint64 {
	usage := int64(AccountRecordOverhead)
	if c.account != nil {
		usage += int64(c.account.StateUsage)
	}
	if c.code != nil {
		usage += int64(c.code.Size)
	}
	if c.metered != nil {
		usage += c.metered.delta
	}
	if usage < 0 {
		return 0
	}
	return uint64(usage)
}

func (c *CallContext) Logger() log.Logger {
	if c.log == nil {
		c.log = log.New("receiver", c.Current)
	}
	return c.log
}

// DecodeArgs unmarshals JSON call arguments. Empty arguments decode as {}.
func DecodeArgs(args []byte, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// EncodeResult marshals a call return value. A nil value returns no bytes.
func EncodeResult(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
