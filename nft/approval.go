// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import (
	"fmt"
	"sort"

	"github.com/navara-labs/nnsvm/chain"
)

func sortApprovals(a []approval) {
	sort.Slice(a, func(i, j int) bool { return a[i].Account < a[j].Account })
}

func (c *Collection) ownedRecord(ctx *chain.CallContext, id string) (*record, error) {
	r, ok, err := c.record(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTokenMissing, id)
	}
	if r.Owner != ctx.Predecessor {
		return nil, fmt.Errorf("%w: %s", ErrNotTokenOwner, ctx.Predecessor)
	}
	return r, nil
}

type onApproveArgs struct {
	TokenID    string          `json:"token_id"`
	OwnerID    chain.AccountID `json:"owner_id"`
	ApprovalID uint64          `json:"approval_id"`
	Msg        string          `json:"msg"`
}

// Approve lets [account] transfer [id]. When [msg] is set, [account] is
// notified through nft_on_approve.
func (c *Collection) Approve(ctx *chain.CallContext, id string, account chain.AccountID, msg *string) (uint64, error) {
	if ctx.AttachedDeposit == 0 {
		return 0, ErrDepositRequired
	}
	if err := account.Verify(); err != nil {
		return 0, err
	}
	r, err := c.ownedRecord(ctx, id)
	if err != nil {
		return 0, err
	}
	approvalID := r.NextApproval
	r.NextApproval++
	replaced := false
	for i := range r.Approvals {
		if r.Approvals[i].Account == account {
			r.Approvals[i].ID = approvalID
			replaced = true
		}
	}
	if !replaced {
		r.Approvals = append(r.Approvals, approval{Account: account, ID: approvalID})
		sortApprovals(r.Approvals)
	}
	if err := c.putRecord(id, r); err != nil {
		return 0, err
	}
	if msg != nil {
		p, err := chain.NewPromise(account).FunctionCallJSON(OnApproveMethod, &onApproveArgs{
			TokenID:    id,
			OwnerID:    r.Owner,
			ApprovalID: approvalID,
			Msg:        *msg,
		}, 0)
		if err != nil {
			return 0, err
		}
		if err := ctx.Dispatch(p); err != nil {
			return 0, err
		}
	}
	return approvalID, nil
}

func (c *Collection) Revoke(ctx *chain.CallContext, id string, account chain.AccountID) error {
	if ctx.AttachedDeposit != 1 {
		return ErrOneUnitRequired
	}
	r, err := c.ownedRecord(ctx, id)
	if err != nil {
		return err
	}
	kept := r.Approvals[:0]
	for _, a := range r.Approvals {
		if a.Account != account {
			kept = append(kept, a)
		}
	}
	r.Approvals = kept
	return c.putRecord(id, r)
}

func (c *Collection) RevokeAll(ctx *chain.CallContext, id string) error {
	if ctx.AttachedDeposit != 1 {
		return ErrOneUnitRequired
	}
	r, err := c.ownedRecord(ctx, id)
	if err != nil {
		return err
	}
	r.Approvals = nil
	return c.putRecord(id, r)
}

// IsApproved reports whether [account] may transfer [id], optionally
// pinned to [approvalID].
func (c *Collection) IsApproved(id string, account chain.AccountID, approvalID *uint64) (bool, error) {
	r, ok, err := c.record(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTokenMissing, id)
	}
	got, ok := r.approvals()[account]
	if !ok {
		return false, nil
	}
	return approvalID == nil || *approvalID == got, nil
}
