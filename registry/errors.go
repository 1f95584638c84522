// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrExpired             = errors.New("expired")
	ErrUnexpired           = errors.New("unexpired")
	ErrNameExpired         = errors.New("name expired")
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	ErrInvalidExpiration   = errors.New("invalid expiration")
	ErrAlreadyInitialized  = errors.New("already initialized")
	ErrNotInitialized      = errors.New("not initialized")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrInvalidMetadata     = errors.New("invalid contract metadata")
	ErrOneUnitRequired     = errors.New("requires attached deposit of exactly 1")
)
