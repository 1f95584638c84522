// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import "errors"

var (
	ErrInvalidTokenID   = errors.New("invalid token id")
	ErrTokenMissing     = errors.New("token not found")
	ErrTokenExists      = errors.New("token already exists")
	ErrSameOwner        = errors.New("current and next owner must differ")
	ErrNotApproved      = errors.New("sender not approved")
	ErrApprovalMismatch = errors.New("approval id does not match")
	ErrNotTokenOwner    = errors.New("predecessor must be token owner")
	ErrOneUnitRequired  = errors.New("requires attached deposit of exactly 1")
	ErrDepositRequired  = errors.New("requires attached deposit of at least 1")
)
