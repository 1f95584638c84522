// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resolver

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/navara-labs/nnsvm/chain"
)

const DefaultAddressLimit = 50

// Address is the answer to a resolve query. A network without a record
// resolves to a nil address.
type Address struct {
	Network string  `json:"network"`
	Address *string `json:"address"`
}

func (s *state) setAddresses(addresses map[string]string) error {
	if err := s.requireOwner(); err != nil {
		return err
	}
	for network, addr := range addresses {
		if err := s.addresses.Put([]byte(network), []byte(addr)); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) resolve(network string) (*Address, error) {
	v, err := s.addresses.Get([]byte(network))
	switch err {
	case nil:
		addr := string(v)
		return &Address{Network: network, Address: &addr}, nil
	case database.ErrNotFound:
		return &Address{Network: network}, nil
	default:
		return nil, err
	}
}

// getAddresses pages through the address records in network order. A nil
// [limit] means DefaultAddressLimit.
func (s *state) getAddresses(from uint64, limit *uint64) ([]*Address, error) {
	n := uint64(DefaultAddressLimit)
	if limit != nil {
		n = *limit
	}
	out := []*Address{}
	if n == 0 {
		return out, nil
	}
	it := s.addresses.NewIterator()
	defer it.Release()

	for i := uint64(0); it.Next() && uint64(len(out)) < n; i++ {
		if i < from {
			continue
		}
		addr := string(it.Value())
		out = append(out, &Address{Network: string(it.Key()), Address: &addr})
	}
	return out, it.Error()
}

// setTextRecords inserts the whole batch and only then enforces the cap.
// An oversized batch fails the call, which discards every insert.
func (s *state) setTextRecords(records map[string]string) error {
	if err := s.requireOwner(); err != nil {
		return err
	}
	for k, v := range records {
		if err := s.text.Put([]byte(k), []byte(v)); err != nil {
			return err
		}
	}
	n, err := count(s.text)
	if err != nil {
		return err
	}
	if n > MaxTextRecords {
		return fmt.Errorf("%w: %d > %d", ErrTooManyRecords, n, MaxTextRecords)
	}
	return nil
}

func (s *state) textRecords() (map[string]string, error) {
	it := s.text.NewIterator()
	defer it.Release()

	out := map[string]string{}
	for it.Next() {
		out[string(it.Key())] = string(it.Value())
	}
	return out, it.Error()
}

func (s *state) setIPFS(value string) error {
	if err := s.requireOwner(); err != nil {
		return err
	}
	return s.db.Put(ipfsKey, []byte(value))
}

func (s *state) optional(k []byte) (*string, error) {
	v, err := s.db.Get(k)
	if err == database.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	str := string(v)
	return &str, nil
}

// clear wipes every record and sends the storage stake they held to
// [beneficiary]. It returns the refunded amount.
func (s *state) clear(beneficiary chain.AccountID) (uint64, error) {
	if err := s.requireOwner(); err != nil {
		return 0, err
	}
	if err := beneficiary.Verify(); err != nil {
		return 0, err
	}
	before := s.ctx.StorageUsage()
	if err := chain.ClearDatabase(s.addresses); err != nil {
		return 0, err
	}
	if err := chain.ClearDatabase(s.text); err != nil {
		return 0, err
	}
	if err := s.db.Delete(ipfsKey); err != nil {
		return 0, err
	}
	released := before - s.ctx.StorageUsage()
	refund := released * s.ctx.StorageByteCost
	if refund == 0 {
		return 0, nil
	}
	s.ctx.Logger().Info("resolver cleared", "released", released, "refund", refund, "beneficiary", beneficiary)
	return refund, s.ctx.Dispatch(chain.NewPromise(beneficiary).Transfer(refund))
}

func count(db database.Database) (int, error) {
	it := db.NewIterator()
	defer it.Release()

	n := 0
	for it.Next() {
		n++
	}
	return n, it.Error()
}
