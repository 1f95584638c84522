// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"
)

var (
	ErrNotInitialized = errors.New("vm not initialized")
	ErrInvalidTxID    = errors.New("invalid tx id")
	ErrMissingField   = errors.New("missing field")
)
