// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"sort"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/navara-labs/nnsvm/codec"
)

// account/ (account records)
//   -> [account id] -> Account
// state/ (contract storage, one namespace per account)
//   -> [account id]/ -> contract keys
// outcome/ (finalized receipts)
//   -> [receipt id] -> Outcome
// tx/ (receipts spawned by a transaction)
//   -> [tx id][receipt id]
// block/
//   -> last_accepted -> Block

const (
	// Charged once per account, on top of its code and state.
	AccountRecordOverhead = 100
	// Charged per stored key/value pair.
	DataRecordOverhead = 40
)

var (
	accountBucket = []byte("account")
	stateBucket   = []byte("state")
	outcomeBucket = []byte("outcome")
	txBucket      = []byte("tx")
	blockBucket   = []byte("block")

	lastAccepted = []byte("last_accepted")
)

func GetAccount(db database.Database, id AccountID) (*Account, bool, error) {
	v, err := prefixdb.New(accountBucket, db).Get([]byte(id))
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a := new(Account)
	if err := codec.Unmarshal(v, a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func PutAccount(db database.Database, id AccountID, a *Account) error {
	b, err := codec.Marshal(a)
	if err != nil {
		return err
	}
	return prefixdb.New(accountBucket, db).Put([]byte(id), b)
}

// RemoveAccount removes the account record and its whole state namespace.
func RemoveAccount(db database.Database, id AccountID) error {
	if err := ClearDatabase(StateDB(db, id)); err != nil {
		return err
	}
	return prefixdb.New(accountBucket, db).Delete([]byte(id))
}

// StateDB returns the contract storage namespace of [id].
func StateDB(db database.Database, id AccountID) database.Database {
	return prefixdb.New(append([]byte(id), '/'), prefixdb.New(stateBucket, db))
}

// ClearDatabase deletes every key visible through [db].
func ClearDatabase(db database.Database) error {
	it := db.NewIterator()
	keys := [][]byte{}
	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		keys = append(keys, k)
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := db.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// ModifyBalance credits ([add]) or debits [change] on [id] and returns the
// resulting balance.
func ModifyBalance(db database.Database, id AccountID, add bool, change uint64) (uint64, error) {
	a, exists, err := GetAccount(db, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrAccountMissing
	}
	if add {
		if a.Balance+change < a.Balance {
			return 0, ErrBalanceOverflow
		}
		a.Balance += change
	} else {
		if a.Balance < change {
			return 0, ErrInsufficientBalance
		}
		a.Balance -= change
	}
	return a.Balance, PutAccount(db, id, a)
}

func PutOutcome(db database.Database, o *Outcome) error {
	b, err := codec.Marshal(o)
	if err != nil {
		return err
	}
	if err := prefixdb.New(outcomeBucket, db).Put(o.ReceiptID[:], b); err != nil {
		return err
	}
	k := make([]byte, 0, 2*len(ids.Empty))
	k = append(k, o.TxID[:]...)
	k = append(k, o.ReceiptID[:]...)
	return prefixdb.New(txBucket, db).Put(k, nil)
}

func GetOutcome(db database.Database, receiptID ids.ID) (*Outcome, bool, error) {
	v, err := prefixdb.New(outcomeBucket, db).Get(receiptID[:])
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	o := new(Outcome)
	if err := codec.Unmarshal(v, o); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// GetTxOutcomes returns the finalized receipts of [txID] in execution order.
func GetTxOutcomes(db database.Database, txID ids.ID) ([]*Outcome, error) {
	it := prefixdb.New(txBucket, db).NewIteratorWithPrefix(txID[:])
	defer it.Release()

	outcomes := []*Outcome{}
	for it.Next() {
		k := it.Key()
		rid, err := ids.ToID(k[len(txID):])
		if err != nil {
			return nil, err
		}
		o, exists, err := GetOutcome(db, rid)
		if err != nil {
			return nil, err
		}
		if exists {
			outcomes = append(outcomes, o)
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Seq < outcomes[j].Seq })
	return outcomes, nil
}

func SetLastAccepted(db database.Database, b *Block) error {
	v, err := codec.Marshal(b)
	if err != nil {
		return err
	}
	return prefixdb.New(blockBucket, db).Put(lastAccepted, v)
}

func GetLastAccepted(db database.Database) (*Block, bool, error) {
	v, err := prefixdb.New(blockBucket, db).Get(lastAccepted)
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b := new(Block)
	if err := codec.Unmarshal(v, b); err != nil {
		return nil, false, err
	}
	return b, true, nil
}
