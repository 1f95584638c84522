// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import (
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/navara-labs/nnsvm/chain"
)

type tokenArgs struct {
	TokenID string `json:"token_id"`
}

type approveArgs struct {
	TokenID    string          `json:"token_id"`
	AccountID  chain.AccountID `json:"account_id"`
	ApprovalID *uint64         `json:"approval_id,omitempty"`
	Msg        *string         `json:"msg,omitempty"`
}

type pageArgs struct {
	AccountID chain.AccountID `json:"account_id,omitempty"`
	FromIndex json.Uint64     `json:"from_index,omitempty"`
	Limit     uint64          `json:"limit,omitempty"`
}

// Handle serves the approval and enumeration methods plus nft_token. Core
// transfers are left to the contract so it can hook them. It reports false
// when [method] is not handled here.
func (c *Collection) Handle(ctx *chain.CallContext, method string, args []byte) ([]byte, bool, error) {
	var (
		v   interface{}
		err error
	)
	switch method {
	case "nft_token":
		var a tokenArgs
		if err = chain.DecodeArgs(args, &a); err != nil {
			break
		}
		var t *Token
		t, _, err = c.Token(a.TokenID)
		v = t
	case "nft_approve":
		var a approveArgs
		if err = chain.DecodeArgs(args, &a); err != nil {
			break
		}
		var id uint64
		id, err = c.Approve(ctx, a.TokenID, a.AccountID, a.Msg)
		v = id
	case "nft_revoke":
		var a approveArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = c.Revoke(ctx, a.TokenID, a.AccountID)
		}
	case "nft_revoke_all":
		var a tokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = c.RevokeAll(ctx, a.TokenID)
		}
	case "nft_is_approved":
		var a approveArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = c.IsApproved(a.TokenID, a.AccountID, a.ApprovalID)
		}
	case "nft_total_supply":
		var n uint64
		n, err = c.TotalSupply()
		v = json.Uint64(n)
	case "nft_tokens":
		var a pageArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = c.Tokens(uint64(a.FromIndex), a.Limit)
		}
	case "nft_supply_for_owner":
		var a pageArgs
		if err = chain.DecodeArgs(args, &a); err != nil {
			break
		}
		var n uint64
		n, err = c.SupplyForOwner(a.AccountID)
		v = json.Uint64(n)
	case "nft_tokens_for_owner":
		var a pageArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = c.TokensForOwner(a.AccountID, uint64(a.FromIndex), a.Limit)
		}
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	b, err := chain.EncodeResult(v)
	return b, true, err
}
