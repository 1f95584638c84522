// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/nft"
)

// Call arguments, JSON encoded. Balances travel as quoted decimal strings.

type NewArgs struct {
	OwnerID         chain.AccountID   `json:"owner_id"`
	Metadata        *ContractMetadata `json:"metadata"`
	PriceForOneYear json.Uint64       `json:"price_for_one_year"`
	FeeRegister     json.Uint64       `json:"fee_register"`
}

type MigrateArgs struct {
	FeeRegister json.Uint64 `json:"fee_register"`
}

type AccountArgs struct {
	AccountID chain.AccountID `json:"account_id"`
}

type OwnerArgs struct {
	OwnerID chain.AccountID `json:"owner_id"`
}

type TokenArgs struct {
	TokenID string `json:"token_id"`
}

type RegisterArgs struct {
	TokenID      string          `json:"token_id"`
	TokenOwnerID chain.AccountID `json:"token_owner_id"`
}

type RegisterNameArgs struct {
	TokenID       string             `json:"token_id"`
	TokenOwnerID  chain.AccountID    `json:"token_owner_id"`
	TokenMetadata *nft.TokenMetadata `json:"token_metadata"`
	YearsExtended uint64             `json:"years_extended"`
}

type FailureResolveArgs struct {
	Signer    chain.AccountID `json:"signer"`
	Deposited json.Uint64     `json:"deposited"`
}

type TransferArgs struct {
	ReceiverID chain.AccountID `json:"receiver_id"`
	TokenID    string          `json:"token_id"`
	ApprovalID *uint64         `json:"approval_id,omitempty"`
	Memo       string          `json:"memo,omitempty"`
	Msg        string          `json:"msg,omitempty"`
}

type PriceArgs struct {
	Price json.Uint64 `json:"price"`
}
