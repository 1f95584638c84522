// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/nft"
	"github.com/navara-labs/nnsvm/parser"
)

func (s *state) getExpiry(id string) (uint64, bool, error) {
	v, err := s.expiry.Get([]byte(id))
	if err == database.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// putExpiry stores [exp] for [id]. The new date must lie in the future.
func (s *state) putExpiry(id string, exp uint64) error {
	if exp <= s.ctx.BlockTimestamp {
		return fmt.Errorf("%w: %d is not after %d", ErrInvalidExpiration, exp, s.ctx.BlockTimestamp)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, exp)
	return s.expiry.Put([]byte(id), b)
}

// requireUnexpired fails when [id] is unknown or its expiration has passed.
func (s *state) requireUnexpired(id string) error {
	exp, ok, err := s.getExpiry(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", nft.ErrTokenMissing, id)
	}
	if exp < s.ctx.BlockTimestamp {
		return fmt.Errorf("%w: %s at %d", ErrExpired, id, exp)
	}
	return nil
}

func addYears(ts, years uint64) (uint64, error) {
	d := years * OneYearMillisecond
	if years != 0 && d/years != OneYearMillisecond || ts+d < ts {
		return 0, ErrInvalidExpiration
	}
	return ts + d, nil
}

// register checks the name can be taken and schedules register_name with
// the deposit net of the overhead, followed by a refund on failure.
func (s *state) register(cfg *config, id string, tokenOwner chain.AccountID) error {
	if err := parser.CheckName(id); err != nil {
		return err
	}
	if err := chain.SubAccount(id, s.ctx.Current).Verify(); err != nil {
		return err
	}
	if err := tokenOwner.Verify(); err != nil {
		return err
	}
	exp, ok, err := s.getExpiry(id)
	if err != nil {
		return err
	}
	if ok && exp >= s.ctx.BlockTimestamp {
		return fmt.Errorf("%w: %s until %d", ErrUnexpired, id, exp)
	}
	deposited, ok := netDeposit(s.ctx.AttachedDeposit)
	if !ok || deposited < cfg.PriceForOneYear {
		return fmt.Errorf("%w: %d attached, need %d", ErrInsufficientDeposit, s.ctx.AttachedDeposit, RegisterOverhead+cfg.PriceForOneYear)
	}
	years := Years(deposited, cfg.PriceForOneYear)

	mutate, err := chain.NewPromise(s.ctx.Current).FunctionCallJSON("register_name", &RegisterNameArgs{
		TokenID:       id,
		TokenOwnerID:  tokenOwner,
		TokenMetadata: tokenMetadata(id),
		YearsExtended: years,
	}, deposited)
	if err != nil {
		return err
	}
	refund, err := chain.NewPromise(s.ctx.Current).FunctionCallJSON("failure_resolve", &FailureResolveArgs{
		Signer:    s.ctx.Predecessor,
		Deposited: json.Uint64(deposited),
	}, 0)
	if err != nil {
		return err
	}
	s.ctx.Logger().Debug("register scheduled", "name", id, "owner", tokenOwner, "years", years)
	return s.ctx.Dispatch(mutate.Then(refund))
}

// registerName sets the expiration and then mints the name, or, when it
// already exists, hands it to the signer of the transaction.
func (s *state) registerName(a *RegisterNameArgs) (*nft.Token, error) {
	if err := s.ctx.RequirePrivate(); err != nil {
		return nil, err
	}
	// Another registration may have landed since register checked.
	prev, ok, err := s.getExpiry(a.TokenID)
	if err != nil {
		return nil, err
	}
	if ok && prev >= s.ctx.BlockTimestamp {
		return nil, fmt.Errorf("%w: %s until %d", ErrUnexpired, a.TokenID, prev)
	}
	exp, err := addYears(s.ctx.BlockTimestamp, a.YearsExtended)
	if err != nil {
		return nil, err
	}
	if err := s.putExpiry(a.TokenID, exp); err != nil {
		return nil, err
	}

	holder, exists, err := s.tokens.Owner(a.TokenID)
	if err != nil {
		return nil, err
	}
	if exists {
		newHolder := s.ctx.Signer
		if holder != newHolder {
			if err := s.tokens.TransferUnguarded(s.ctx, a.TokenID, holder, newHolder); err != nil {
				return nil, err
			}
		}
		if err := s.releaseDefault(a.TokenID, newHolder); err != nil {
			return nil, err
		}
		t, _, err := s.tokens.Token(a.TokenID)
		return t, err
	}

	t, err := s.tokens.Mint(s.ctx, a.TokenID, a.TokenOwnerID, a.TokenMetadata)
	if err != nil {
		return nil, err
	}
	return t, s.releaseDefault(a.TokenID, a.TokenOwnerID)
}

// failureResolve refunds [deposited] to [signer] when the preceding
// receipt rolled back. It reports whether a refund was issued.
func (s *state) failureResolve(signer chain.AccountID, deposited uint64) (bool, error) {
	if err := s.ctx.RequirePrivate(); err != nil {
		return false, err
	}
	res, err := s.ctx.PromiseResult(0)
	if err != nil {
		return false, err
	}
	if !res.Failed() {
		return false, nil
	}
	s.ctx.Logger().Info("refunding failed call", "signer", signer, "amount", deposited, "error", res.Error)
	if deposited == 0 {
		return true, nil
	}
	return true, s.ctx.Dispatch(chain.NewPromise(signer).Transfer(deposited))
}

// extend adds the years paid by the attached deposit to an unexpired name.
// It returns the new expiration.
func (s *state) extend(cfg *config, id string) (json.Uint64, error) {
	if _, err := s.requireHolder(id); err != nil {
		return 0, err
	}
	exp, ok, err := s.getExpiry(id)
	if err != nil {
		return 0, err
	}
	if !ok {
		exp = s.ctx.BlockTimestamp
	}
	if exp < s.ctx.BlockTimestamp {
		return 0, fmt.Errorf("%w: %s at %d", ErrNameExpired, id, exp)
	}
	next, err := addYears(exp, Years(s.ctx.AttachedDeposit, cfg.PriceForOneYear))
	if err != nil {
		return 0, err
	}
	if next <= exp {
		return 0, fmt.Errorf("%w: deposit buys no full year", ErrInvalidExpiration)
	}
	if err := s.putExpiry(id, next); err != nil {
		return 0, err
	}
	s.ctx.Logger().Info("name extended", "name", id, "expiry", next)
	return json.Uint64(next), nil
}

func (s *state) expiredDate(id string) (*json.Uint64, error) {
	exp, ok, err := s.getExpiry(id)
	if err != nil || !ok {
		return nil, err
	}
	v := json.Uint64(exp)
	return &v, nil
}
