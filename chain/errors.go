// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"errors"
)

var (
	// Submission
	ErrInvalidCall   = errors.New("invalid call")
	ErrDuplicateTx   = errors.New("duplicate transaction")
	ErrTxMissing     = errors.New("transaction missing")
	ErrMempoolFull   = errors.New("too many pending receipts")
	ErrEmptyPromise  = errors.New("promise has no actions")
	ErrPromiseInView = errors.New("promises cannot be dispatched from a view call")

	// Accounts
	ErrAccountMissing      = errors.New("account missing")
	ErrAccountExists       = errors.New("account already exists")
	ErrNotSubAccount       = errors.New("receiver is not a direct sub-account of the predecessor")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientStorage = errors.New("balance does not cover storage staking")
	ErrBalanceOverflow     = errors.New("balance overflow")

	// Contracts
	ErrNoContract     = errors.New("account has no contract deployed")
	ErrUnknownCode    = errors.New("unknown code bundle")
	ErrMethodNotFound = errors.New("method not found")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrPrivateMethod  = errors.New("method is private")
	ErrPromiseIndex   = errors.New("promise result index out of range")
	ErrInvalidStatus  = errors.New("invalid receipt status transition")
	ErrCodeRegistered = errors.New("code bundle already registered")

	// Blocks
	ErrNoReceipts = errors.New("no pending receipts")
	ErrNotSettled = errors.New("receipts still pending after block limit")
)
