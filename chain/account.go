// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/navara-labs/nnsvm/parser"
)

// AccountID is a human readable account reference such as "alice" or
// "alice.registry".
type AccountID string

func (a AccountID) String() string { return string(a) }

func (a AccountID) Verify() error {
	return parser.CheckAccountID(string(a))
}

// SubAccount derives "<label>.<parent>".
func SubAccount(label string, parent AccountID) AccountID {
	return AccountID(label + parser.AccountDelimiter + string(parent))
}

// IsSubAccountOf reports whether [a] is a direct sub-account of [parent].
func (a AccountID) IsSubAccountOf(parent AccountID) bool {
	return parser.IsSubAccount(string(a), string(parent))
}

type Account struct {
	Balance uint64 `serialize:"true" json:"balance"`
	Code    string `serialize:"true" json:"code"`
	Created uint64 `serialize:"true" json:"created"`

	// State bytes, excluding code and the per-account overhead.
	StateUsage uint64 `serialize:"true" json:"stateUsage"`
}
