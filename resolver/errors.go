// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resolver

import "errors"

var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrOwnerUnchanged     = errors.New("owner not changed")
	ErrTooManyRecords     = errors.New("too many records")
)
