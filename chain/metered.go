// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/database"
)

// meteredDB tracks how many storage bytes a contract adds or releases.
// Contracts only use the single-key write path, batches are not metered.
//
// Calls and views must both see contract state through this wrapper:
// prefixdb compresses nested prefixes when its parent is a prefixdb and
// nests them otherwise, so the two would disagree on key layout.
type meteredDB struct {
	database.Database

	delta int64
}

func newMeteredDB(db database.Database) *meteredDB {
	return &meteredDB{Database: db}
}

func recordSize(k, v []byte) int64 {
	return int64(len(k) + len(v) + DataRecordOverhead)
}

func (m *meteredDB) Put(k, v []byte) error {
	prev, err := m.Database.Get(k)
	switch err {
	case nil:
		m.delta -= recordSize(k, prev)
	case database.ErrNotFound:
	default:
		return err
	}
	if err := m.Database.Put(k, v); err != nil {
		return err
	}
	m.delta += recordSize(k, v)
	return nil
}

func (m *meteredDB) Delete(k []byte) error {
	prev, err := m.Database.Get(k)
	switch err {
	case nil:
	case database.ErrNotFound:
		return nil
	default:
		return err
	}
	if err := m.Database.Delete(k); err != nil {
		return err
	}
	m.delta -= recordSize(k, prev)
	return nil
}
