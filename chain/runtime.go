// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/units"
	log "github.com/inconshreveable/log15"
	"golang.org/x/crypto/sha3"

	"github.com/navara-labs/nnsvm/mempool"
)

const (
	// DefaultStorageByteCost is the balance locked per stored byte.
	DefaultStorageByteCost = 10 * units.MicroAvax

	DefaultMaxPending = 4096
)

// Call is a signed request to run [Method] on [Receiver]. An empty method
// sends [Deposit] as a plain transfer.
type Call struct {
	Signer   AccountID       `json:"signer"`
	Receiver AccountID       `json:"receiver"`
	Method   string          `json:"method,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	Deposit  uint64          `json:"deposit"`
	Nonce    string          `json:"nonce,omitempty"`
}

func (c *Call) Verify() error {
	if err := c.Signer.Verify(); err != nil {
		return fmt.Errorf("%w: signer %v", ErrInvalidCall, err)
	}
	if err := c.Receiver.Verify(); err != nil {
		return fmt.Errorf("%w: receiver %v", ErrInvalidCall, err)
	}
	if len(c.Method) == 0 && c.Deposit == 0 {
		return fmt.Errorf("%w: nothing to do", ErrInvalidCall)
	}
	return nil
}

// ID is the sha3 digest of the call's JSON encoding.
func (c *Call) ID() (ids.ID, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return ids.Empty, err
	}
	h := sha3.Sum256(b)
	return ids.ToID(h[:])
}

func (c *Call) promise() *Promise {
	p := NewPromise(c.Receiver)
	if len(c.Method) == 0 {
		return p.Transfer(c.Deposit)
	}
	return p.FunctionCall(c.Method, c.Args, c.Deposit)
}

type Option func(*Runtime)

// WithClock overrides the source of block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Runtime) { r.clock = clock }
}

func WithStorageByteCost(cost uint64) Option {
	return func(r *Runtime) { r.byteCost = cost }
}

func WithMaxPending(n int) Option {
	return func(r *Runtime) { r.maxPending = n }
}

// Runtime executes receipts one at a time. Each receipt runs against its
// own versiondb layer so a failing receipt leaves no trace besides the
// refund of its deposit.
type Runtime struct {
	l sync.Mutex

	db         *versiondb.Database
	codes      map[string]*Code
	pool       *mempool.Mempool
	pendingTxs map[ids.ID]int
	seq        uint64
	last       *Block

	byteCost   uint64
	maxPending int
	clock      func() time.Time
	listeners  []func(*Block, []*Outcome)
}

func New(db database.Database, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		db:         versiondb.New(db),
		codes:      map[string]*Code{},
		pendingTxs: map[ids.ID]int{},
		byteCost:   DefaultStorageByteCost,
		maxPending: DefaultMaxPending,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pool = mempool.New(r.maxPending)

	last, exists, err := GetLastAccepted(r.db)
	if err != nil {
		return nil, err
	}
	if !exists {
		last = &Block{Tmstmp: r.now()}
	}
	if err := last.init(); err != nil {
		return nil, err
	}
	r.last = last
	r.seq = last.Hght << 32
	return r, nil
}

func (r *Runtime) now() uint64 {
	return uint64(r.clock().UnixNano() / int64(time.Millisecond))
}

func (r *Runtime) RegisterCode(c *Code) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.codes[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrCodeRegistered, c.Name)
	}
	r.codes[c.Name] = c
	return nil
}

// OnAccept registers [f] to observe every accepted block.
func (r *Runtime) OnAccept(f func(*Block, []*Outcome)) {
	r.l.Lock()
	defer r.l.Unlock()

	r.listeners = append(r.listeners, f)
}

func (r *Runtime) StorageByteCost() uint64 { return r.byteCost }

// CreateAccount provisions an account outside of any receipt. Used to load
// genesis allocations.
func (r *Runtime) CreateAccount(id AccountID, balance uint64, code string) error {
	r.l.Lock()
	defer r.l.Unlock()

	if err := id.Verify(); err != nil {
		return err
	}
	_, exists, err := GetAccount(r.db, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, id)
	}
	if len(code) > 0 {
		if _, ok := r.codes[code]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCode, code)
		}
	}
	if err := PutAccount(r.db, id, &Account{Balance: balance, Code: code, Created: r.last.Tmstmp}); err != nil {
		return err
	}
	return r.db.Commit()
}

// Submit debits the signer's deposit and schedules the first receipt of the
// call.
func (r *Runtime) Submit(c *Call) (ids.ID, error) {
	if err := c.Verify(); err != nil {
		return ids.Empty, err
	}
	txID, err := c.ID()
	if err != nil {
		return ids.Empty, err
	}

	r.l.Lock()
	defer r.l.Unlock()

	if r.pendingTxs[txID] > 0 {
		return ids.Empty, ErrDuplicateTx
	}
	prev, err := GetTxOutcomes(r.db, txID)
	if err != nil {
		return ids.Empty, err
	}
	if len(prev) > 0 {
		return ids.Empty, ErrDuplicateTx
	}
	if r.pool.Len() >= r.maxPending {
		return ids.Empty, ErrMempoolFull
	}
	if c.Deposit > 0 {
		if _, err := ModifyBalance(r.db, c.Signer, false, c.Deposit); err != nil {
			return ids.Empty, fmt.Errorf("%w: signer %s", err, c.Signer)
		}
	} else {
		_, exists, err := GetAccount(r.db, c.Signer)
		if err != nil {
			return ids.Empty, err
		}
		if !exists {
			return ids.Empty, fmt.Errorf("%w: signer %s", ErrAccountMissing, c.Signer)
		}
	}
	if err := r.enqueue(txID, c.Signer, c.Signer, c.promise(), nil); err != nil {
		return ids.Empty, err
	}
	log.Debug("submitted call", "txId", txID, "signer", c.Signer, "receiver", c.Receiver, "method", c.Method)
	return txID, nil
}

func (r *Runtime) enqueue(
	txID ids.ID,
	signer AccountID,
	predecessor AccountID,
	p *Promise,
	results []PromiseResult,
) error {
	r.seq++
	rc := newReceipt(txID, r.seq, signer, predecessor, p, results)
	if !r.pool.Add(rc) {
		return ErrMempoolFull
	}
	r.pendingTxs[txID]++
	return nil
}

// View runs a call against a throwaway layer of the current state.
func (r *Runtime) View(receiver AccountID, method string, args []byte) ([]byte, error) {
	r.l.Lock()
	defer r.l.Unlock()

	vdb := versiondb.New(r.db)
	defer vdb.Abort()

	a, exists, err := GetAccount(vdb, receiver)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountMissing, receiver)
	}
	code, ok := r.codes[a.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, receiver)
	}
	ctx := &CallContext{
		Current:         receiver,
		BlockTimestamp:  r.now(),
		BlockHeight:     r.last.Hght,
		StorageByteCost: r.byteCost,
		View:            true,
		Database:        newMeteredDB(StateDB(vdb, receiver)),
		account:         a,
		code:            code,
		log:             log.New("receiver", receiver, "view", method),
	}
	return code.New().Call(ctx, method, args)
}

// BuildBlock executes every receipt pending at the time of the call.
// Receipts spawned while building wait for the next block.
func (r *Runtime) BuildBlock() (*Block, error) {
	r.l.Lock()

	n := r.pool.Len()
	if n == 0 {
		r.l.Unlock()
		return nil, ErrNoReceipts
	}
	ts := r.now()
	if ts < r.last.Tmstmp {
		ts = r.last.Tmstmp
	}
	blk := &Block{
		Prnt:   r.last.ID(),
		Tmstmp: ts,
		Hght:   r.last.Hght + 1,
	}
	outcomes := make([]*Outcome, 0, n)
	for i := 0; i < n; i++ {
		item, ok := r.pool.PopMin()
		if !ok {
			break
		}
		rc := item.(*Receipt)
		o, err := r.execute(rc, blk)
		if err != nil {
			r.db.Abort()
			r.l.Unlock()
			return nil, err
		}
		blk.Receipts = append(blk.Receipts, rc.ID())
		outcomes = append(outcomes, o)
	}
	if err := blk.init(); err != nil {
		r.l.Unlock()
		return nil, err
	}
	if err := SetLastAccepted(r.db, blk); err != nil {
		r.l.Unlock()
		return nil, err
	}
	if err := r.db.Commit(); err != nil {
		r.l.Unlock()
		return nil, err
	}
	r.last = blk
	listeners := r.listeners
	r.l.Unlock()

	log.Debug("accepted block", "id", blk.ID(), "height", blk.Hght, "receipts", len(blk.Receipts))
	for _, f := range listeners {
		f(blk, outcomes)
	}
	return blk, nil
}

// Settle builds blocks until no receipt is pending.
func (r *Runtime) Settle(maxBlocks int) error {
	for i := 0; i < maxBlocks; i++ {
		if r.Pending() == 0 {
			return nil
		}
		if _, err := r.BuildBlock(); err != nil {
			return err
		}
	}
	if r.Pending() > 0 {
		return ErrNotSettled
	}
	return nil
}

func (r *Runtime) Pending() int { return r.pool.Len() }

// TxStatus returns the finalized receipts of [txID] and whether some of its
// receipts are still pending.
func (r *Runtime) TxStatus(txID ids.ID) ([]*Outcome, bool, error) {
	r.l.Lock()
	defer r.l.Unlock()

	outcomes, err := GetTxOutcomes(r.db, txID)
	if err != nil {
		return nil, false, err
	}
	pending := r.pendingTxs[txID] > 0
	if len(outcomes) == 0 && !pending {
		return nil, false, ErrTxMissing
	}
	return outcomes, pending, nil
}

func (r *Runtime) Account(id AccountID) (*Account, bool, error) {
	r.l.Lock()
	defer r.l.Unlock()

	return GetAccount(r.db, id)
}

func (r *Runtime) Balance(id AccountID) (uint64, error) {
	a, exists, err := r.Account(id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrAccountMissing
	}
	return a.Balance, nil
}

func (r *Runtime) LastAccepted() *Block {
	r.l.Lock()
	defer r.l.Unlock()

	return r.last
}

func (r *Runtime) execute(rc *Receipt, blk *Block) (*Outcome, error) {
	vdb := versiondb.New(r.db)
	x := &execution{
		runtime: r,
		db:      vdb,
		receipt: rc,
		block:   blk,
	}
	o := &Outcome{
		ReceiptID:   rc.ID(),
		TxID:        rc.TxID,
		Seq:         rc.Seq(),
		Height:      blk.Hght,
		Timestamp:   blk.Tmstmp,
		Signer:      rc.Signer,
		Predecessor: rc.Predecessor,
		Receiver:    rc.Receiver,
		Actions:     rc.actionNames(),
	}

	err := x.run()
	if err == nil {
		err = vdb.Commit()
	}
	if err != nil {
		vdb.Abort()
		x.spawned = nil
		o.Status = RolledBack
		o.Error = err.Error()
		if refund := rc.deposit(); refund > 0 {
			if _, rerr := ModifyBalance(r.db, rc.Predecessor, true, refund); rerr != nil {
				log.Warn("unable to refund deposit", "receipt", rc.ID(), "predecessor", rc.Predecessor, "amount", refund, "error", rerr)
			} else {
				o.Refund = refund
			}
		}
		log.Debug("receipt rolled back", "receipt", rc.ID(), "receiver", rc.Receiver, "actions", o.Actions, "error", err)
	} else {
		o.Status = Committed
		o.Value = x.value
	}
	if ferr := rc.finalize(o.Status); ferr != nil {
		return nil, ferr
	}

	for _, s := range x.spawned {
		if err := r.enqueue(rc.TxID, rc.Signer, s.from, s.promise, nil); err != nil {
			return nil, err
		}
	}
	if rc.then != nil {
		if err := r.enqueue(rc.TxID, rc.Signer, rc.Predecessor, rc.then, []PromiseResult{o.Result()}); err != nil {
			return nil, err
		}
	}

	r.pendingTxs[rc.TxID]--
	if r.pendingTxs[rc.TxID] <= 0 {
		delete(r.pendingTxs, rc.TxID)
	}
	return o, PutOutcome(r.db, o)
}

type spawn struct {
	from    AccountID
	promise *Promise
}

// execution is the scratch state of one receipt.
type execution struct {
	runtime *Runtime
	db      *versiondb.Database
	receipt *Receipt
	block   *Block

	value   []byte
	deleted bool
	spawned []*spawn
}

func (x *execution) run() error {
	for _, a := range x.receipt.Actions {
		if x.deleted {
			return fmt.Errorf("%s: %w", a, ErrAccountMissing)
		}
		if err := a.Execute(x); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	}
	if x.deleted {
		return nil
	}
	return x.checkStorage()
}

func (x *execution) spawn(from AccountID, p *Promise) {
	x.spawned = append(x.spawned, &spawn{from: from, promise: p})
}

func (x *execution) callContext(a *Account, code *Code, attached uint64) *CallContext {
	r := x.receipt
	m := newMeteredDB(StateDB(x.db, r.Receiver))
	return &CallContext{
		Current:         r.Receiver,
		Signer:          r.Signer,
		Predecessor:     r.Predecessor,
		AttachedDeposit: attached,
		BlockTimestamp:  x.block.Tmstmp,
		BlockHeight:     x.block.Hght,
		PromiseResults:  r.PromiseResults,
		StorageByteCost: x.runtime.byteCost,
		Database:        m,
		account:         a,
		code:            code,
		metered:         m,
		log:             log.New("receipt", r.ID(), "receiver", r.Receiver),
	}
}

// settle persists the storage delta of a call and debits the value carried
// by the promises it dispatched.
func (x *execution) settle(ctx *CallContext) error {
	id := x.receipt.Receiver
	a, exists, err := GetAccount(x.db, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountMissing, id)
	}
	usage := int64(a.StateUsage) + ctx.metered.delta
	if usage < 0 {
		usage = 0
	}
	a.StateUsage = uint64(usage)

	total := uint64(0)
	for _, p := range ctx.promises {
		for n := p; n != nil; n = n.then {
			d, err := n.deposit()
			if err != nil {
				return err
			}
			if total+d < total {
				return ErrBalanceOverflow
			}
			total += d
		}
	}
	if a.Balance < total {
		return fmt.Errorf("%w: %s holds %d, promises carry %d", ErrInsufficientBalance, id, a.Balance, total)
	}
	a.Balance -= total
	if err := PutAccount(x.db, id, a); err != nil {
		return err
	}
	for _, p := range ctx.promises {
		x.spawn(id, p)
	}
	return nil
}

// checkStorage verifies the receiver can still pay for what it stores.
func (x *execution) checkStorage() error {
	id := x.receipt.Receiver
	a, exists, err := GetAccount(x.db, id)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	usage := AccountRecordOverhead + a.StateUsage
	if code, ok := x.runtime.codes[a.Code]; ok {
		usage += code.Size
	}
	if required := usage * x.runtime.byteCost; a.Balance < required {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientStorage, id, a.Balance, required)
	}
	return nil
}
