// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import (
	"github.com/navara-labs/nnsvm/chain"
)

const DefaultPageLimit = 50

func (c *Collection) TotalSupply() (uint64, error) {
	it := c.tokens.NewIterator()
	defer it.Release()

	n := uint64(0)
	for it.Next() {
		n++
	}
	return n, it.Error()
}

// Tokens pages through every token in id order.
func (c *Collection) Tokens(from uint64, limit uint64) ([]*Token, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	it := c.tokens.NewIterator()
	ids := []string{}
	for i := uint64(0); it.Next() && uint64(len(ids)) < limit; i++ {
		if i < from {
			continue
		}
		ids = append(ids, string(it.Key()))
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return nil, err
	}
	return c.tokenViews(ids)
}

func (c *Collection) ownedIDs(owner chain.AccountID) ([]string, error) {
	pfx := append([]byte(owner), delimiter)
	it := c.owners.NewIteratorWithPrefix(pfx)
	defer it.Release()

	ids := []string{}
	for it.Next() {
		ids = append(ids, string(it.Key()[len(pfx):]))
	}
	return ids, it.Error()
}

func (c *Collection) SupplyForOwner(owner chain.AccountID) (uint64, error) {
	ids, err := c.ownedIDs(owner)
	return uint64(len(ids)), err
}

func (c *Collection) TokensForOwner(owner chain.AccountID, from uint64, limit uint64) ([]*Token, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	ids, err := c.ownedIDs(owner)
	if err != nil {
		return nil, err
	}
	if from >= uint64(len(ids)) {
		return []*Token{}, nil
	}
	ids = ids[from:]
	if uint64(len(ids)) > limit {
		ids = ids[:limit]
	}
	return c.tokenViews(ids)
}

func (c *Collection) tokenViews(ids []string) ([]*Token, error) {
	tokens := make([]*Token, 0, len(ids))
	for _, id := range ids {
		t, ok, err := c.Token(id)
		if err != nil {
			return nil, err
		}
		if ok {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}
