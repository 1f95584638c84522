// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/navara-labs/nnsvm/mempool"
)

// Status is the lifecycle of a receipt. A receipt leaves [Pending] exactly
// once, driven by the outcome of its execution.
type Status uint8

const (
	Pending Status = iota
	Committed
	RolledBack
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

var _ mempool.Item = &Receipt{}

// Receipt is one hop of an asynchronous call graph.
type Receipt struct {
	TxID           ids.ID
	Signer         AccountID
	Predecessor    AccountID
	Receiver       AccountID
	Actions        []Action
	PromiseResults []PromiseResult

	id     ids.ID
	seq    uint64
	status Status
	// continuation scheduled once this receipt is finalized
	then *Promise
}

func newReceipt(
	txID ids.ID,
	seq uint64,
	signer AccountID,
	predecessor AccountID,
	p *Promise,
	results []PromiseResult,
) *Receipt {
	b := make([]byte, len(txID)+8)
	copy(b, txID[:])
	binary.BigEndian.PutUint64(b[len(txID):], seq)
	return &Receipt{
		TxID:           txID,
		Signer:         signer,
		Predecessor:    predecessor,
		Receiver:       p.receiver,
		Actions:        p.actions,
		PromiseResults: results,
		id:             hashing.ComputeHash256Array(b),
		seq:            seq,
		status:         Pending,
		then:           p.then,
	}
}

func (r *Receipt) ID() ids.ID { return r.id }

func (r *Receipt) Seq() uint64 { return r.seq }

func (r *Receipt) Status() Status { return r.status }

func (r *Receipt) finalize(to Status) error {
	if r.status != Pending || to == Pending {
		return ErrInvalidStatus
	}
	r.status = to
	return nil
}

// deposit is refunded to the predecessor when the receipt rolls back.
func (r *Receipt) deposit() uint64 {
	total := uint64(0)
	for _, a := range r.Actions {
		total += a.Deposit()
	}
	return total
}

func (r *Receipt) actionNames() []string {
	names := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		names[i] = a.String()
	}
	return names
}

// Outcome is the persisted result of a finalized receipt.
type Outcome struct {
	ReceiptID   ids.ID    `serialize:"true" json:"receiptId"`
	TxID        ids.ID    `serialize:"true" json:"txId"`
	Seq         uint64    `serialize:"true" json:"seq"`
	Height      uint64    `serialize:"true" json:"height"`
	Timestamp   uint64    `serialize:"true" json:"timestamp"`
	Signer      AccountID `serialize:"true" json:"signer"`
	Predecessor AccountID `serialize:"true" json:"predecessor"`
	Receiver    AccountID `serialize:"true" json:"receiver"`
	Actions     []string  `serialize:"true" json:"actions"`
	Status      Status    `serialize:"true" json:"status"`
	Value       []byte    `serialize:"true" json:"value,omitempty"`
	Error       string    `serialize:"true" json:"error,omitempty"`
	Refund      uint64    `serialize:"true" json:"refund,omitempty"`
}

func (o *Outcome) Result() PromiseResult {
	return PromiseResult{
		Status: o.Status,
		Value:  o.Value,
		Error:  o.Error,
	}
}
