// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/navara-labs/nnsvm/codec"
)

// Block groups the receipts executed at one timestamp.
type Block struct {
	Prnt     ids.ID   `serialize:"true" json:"parent"`
	Tmstmp   uint64   `serialize:"true" json:"timestamp"`
	Hght     uint64   `serialize:"true" json:"height"`
	Receipts []ids.ID `serialize:"true" json:"receipts"`

	id ids.ID
}

func (b *Block) init() error {
	v, err := codec.Marshal(b)
	if err != nil {
		return err
	}
	id, err := ids.ToID(hashing.ComputeHash256(v))
	if err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Block) ID() ids.ID { return b.id }
