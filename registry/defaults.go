// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/navara-labs/nnsvm/chain"
)

// Every default pointer account -> name is mirrored by a back-reference
// name/account so that all pointers to a name can be found from the name.

const refDelimiter = '/'

func refKey(name string, account chain.AccountID) []byte {
	k := make([]byte, 0, len(name)+1+len(account))
	k = append(k, name...)
	k = append(k, refDelimiter)
	return append(k, account...)
}

func (s *state) defaultName(account chain.AccountID) (*string, error) {
	v, err := s.defaults.Get([]byte(account))
	if err == database.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	name := string(v)
	return &name, nil
}

// setDefault points the predecessor at [id]. A name that is not minted yet
// may be chosen; the pointer is dropped if someone else ends up holding it.
func (s *state) setDefault(id string) error {
	account := s.ctx.Predecessor
	holder, ok, err := s.tokens.Owner(id)
	if err != nil {
		return err
	}
	if ok && holder != account {
		return fmt.Errorf("%w: %s is held by %s", ErrUnauthorized, id, holder)
	}
	if err := s.removeDefault(account); err != nil {
		return err
	}
	if err := s.defaults.Put([]byte(account), []byte(id)); err != nil {
		return err
	}
	return s.refs.Put(refKey(id, account), nil)
}

func (s *state) removeDefault(account chain.AccountID) error {
	prev, err := s.defaultName(account)
	if err != nil || prev == nil {
		return err
	}
	if err := s.refs.Delete(refKey(*prev, account)); err != nil {
		return err
	}
	return s.defaults.Delete([]byte(account))
}

// releaseDefault drops every default pointer to [name] except the one held
// by [keep], the account now holding the name. It runs after every mint,
// re-registration and transfer.
func (s *state) releaseDefault(name string, keep chain.AccountID) error {
	pfx := append([]byte(name), refDelimiter)
	it := s.refs.NewIteratorWithPrefix(pfx)
	accounts := []chain.AccountID{}
	for it.Next() {
		account := chain.AccountID(it.Key()[len(pfx):])
		if account != keep {
			accounts = append(accounts, account)
		}
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if err := s.removeDefault(account); err != nil {
			return err
		}
		s.ctx.Logger().Debug("default name released", "name", name, "account", account)
	}
	return nil
}
