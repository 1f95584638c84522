// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/navara-labs/nnsvm/nft"
)

// Transfers of names only go through while the name is live, and leave
// default pointers only with the account holding the name afterwards.

func (s *state) transfer(a *TransferArgs) error {
	if err := s.requireUnexpired(a.TokenID); err != nil {
		return err
	}
	if _, _, err := s.tokens.Transfer(s.ctx, a.ReceiverID, a.TokenID, a.ApprovalID, a.Memo); err != nil {
		return err
	}
	return s.releaseDefault(a.TokenID, a.ReceiverID)
}

func (s *state) transferCall(a *TransferArgs) error {
	if err := s.requireUnexpired(a.TokenID); err != nil {
		return err
	}
	if err := s.tokens.TransferCall(s.ctx, a.ReceiverID, a.TokenID, a.ApprovalID, a.Memo, a.Msg); err != nil {
		return err
	}
	return s.releaseDefault(a.TokenID, a.ReceiverID)
}

// resolveTransfer settles nft_transfer_call. The name may have gone back
// to its previous holder, so pointers are released against whoever holds
// it now.
func (s *state) resolveTransfer(a *nft.ResolveTransferArgs) (bool, error) {
	if err := s.requireUnexpired(a.TokenID); err != nil {
		return false, err
	}
	kept, err := s.tokens.ResolveTransfer(s.ctx, a)
	if err != nil {
		return false, err
	}
	holder, ok, err := s.tokens.Owner(a.TokenID)
	if err != nil || !ok {
		return kept, err
	}
	return kept, s.releaseDefault(a.TokenID, holder)
}
