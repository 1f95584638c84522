// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	// OneYearMillisecond is the mean Gregorian year.
	OneYearMillisecond uint64 = 31_556_952_000

	DefaultPricePerYear = units.Avax
	// RegisterOverhead is kept by the registry on every registration to pay
	// for the asynchronous calls it schedules.
	RegisterOverhead = units.Avax / 2
)

// Years is the number of whole years [deposit] pays for at [price] per year.
func Years(deposit, price uint64) uint64 {
	if price == 0 {
		return 0
	}
	return deposit / price
}

// netDeposit strips the registration overhead from an attached deposit.
func netDeposit(attached uint64) (uint64, bool) {
	if attached < RegisterOverhead {
		return 0, false
	}
	return attached - RegisterOverhead, true
}

func (s *state) requireOneUnit() error {
	if s.ctx.AttachedDeposit != 1 {
		return ErrOneUnitRequired
	}
	return nil
}

func (s *state) setPrice(cfg *config, price uint64) error {
	if err := s.requireOneUnit(); err != nil {
		return err
	}
	if err := s.requireOwner(); err != nil {
		return err
	}
	if price == 0 {
		return ErrInvalidPrice
	}
	cfg.PriceForOneYear = price
	s.ctx.Logger().Info("price updated", "price", price)
	return s.putConfig(cfg)
}

func (s *state) setFeeRegister(cfg *config, fee uint64) error {
	if err := s.requireOneUnit(); err != nil {
		return err
	}
	if err := s.requireOwner(); err != nil {
		return err
	}
	cfg.FeeRegister = fee
	return s.putConfig(cfg)
}
