// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm implements the nnsvm node: a runtime hosting the registry and
// its resolvers, a block builder and the JSON-RPC surface.
package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/registry"
	"github.com/navara-labs/nnsvm/resolver"
	"github.com/navara-labs/nnsvm/version"
)

const Name = "nnsvm"

type VM struct {
	config   Config
	genesis  *chain.Genesis
	registry chain.AccountID

	runtime *chain.Runtime

	metricsRegistry *prometheus.Registry
	metrics         *metrics

	// [activityLock] must be held when accessing [activity] or [activitySeq]
	activityLock sync.Mutex
	activity     *cache.LRU
	activitySeq  uint64

	startedAt time.Time
}

// New loads [g] into [db] unless the database already holds it, and returns
// a VM ready to serve. [opts] are passed to the runtime.
func New(db database.Database, g *chain.Genesis, config Config, opts ...chain.Option) (*VM, error) {
	if err := g.Verify(); err != nil {
		return nil, err
	}
	reg, ok := registryAccount(g)
	if !ok {
		return nil, fmt.Errorf("%w: genesis has no %s account", ErrMissingField, registry.CodeName)
	}
	opts = append([]chain.Option{
		chain.WithStorageByteCost(g.StorageByteCost),
		chain.WithMaxPending(config.MempoolSize),
	}, opts...)
	rt, err := chain.New(db, opts...)
	if err != nil {
		return nil, err
	}
	for _, c := range []*chain.Code{registry.Code, resolver.Code} {
		if err := rt.RegisterCode(c); err != nil {
			return nil, err
		}
	}

	mreg := prometheus.NewRegistry()
	vm := &VM{
		config:          config,
		genesis:         g,
		registry:        reg,
		runtime:         rt,
		metricsRegistry: mreg,
		metrics:         newMetrics(mreg),
		activity:        &cache.LRU{Size: config.ActivityCacheSize},
		startedAt:       time.Now(),
	}
	rt.OnAccept(vm.accepted)

	_, initialized, err := rt.Account(reg)
	if err != nil {
		return nil, err
	}
	if !initialized {
		if err := g.Load(rt); err != nil {
			return nil, err
		}
		log.Info("loaded genesis", "registry", reg, "accounts", len(g.Accounts))
	}
	last := rt.LastAccepted()
	log.Info("initialized vm", "version", version.Version, "registry", reg, "height", last.Hght, "lastAccepted", last.ID())
	return vm, nil
}

func (vm *VM) Genesis() *chain.Genesis { return vm.genesis }

func (vm *VM) Registry() chain.AccountID { return vm.registry }

func (vm *VM) Runtime() *chain.Runtime { return vm.runtime }

func (vm *VM) Gatherer() prometheus.Gatherer { return vm.metricsRegistry }

// Submit queues a call for the next block.
func (vm *VM) Submit(c *chain.Call) (ids.ID, error) {
	txID, err := vm.runtime.Submit(c)
	vm.metrics.submitted(err)
	if err != nil {
		log.Debug("rejected call", "signer", c.Signer, "receiver", c.Receiver, "method", c.Method, "err", err)
		return ids.Empty, err
	}
	log.Debug("submitted call", "txId", txID, "signer", c.Signer, "receiver", c.Receiver, "method", c.Method)
	return txID, nil
}

// Run builds blocks every [BuildInterval] until [ctx] is done. Each tick
// builds at most [BuildBurst] blocks.
func (vm *VM) Run(ctx context.Context) error {
	t := time.NewTicker(vm.config.BuildInterval)
	defer t.Stop()

	log.Info("starting block builder", "interval", vm.config.BuildInterval, "burst", vm.config.BuildBurst)
	for {
		select {
		case <-ctx.Done():
			log.Info("stopping block builder")
			return nil
		case <-t.C:
		}
		if err := vm.build(); err != nil {
			return err
		}
	}
}

func (vm *VM) build() error {
	for i := 0; i < vm.config.BuildBurst && vm.runtime.Pending() > 0; i++ {
		start := time.Now()
		if _, err := vm.runtime.BuildBlock(); err != nil && !errors.Is(err, chain.ErrNoReceipts) {
			log.Error("block building failed", "err", err)
			return err
		}
		vm.metrics.observeBuild(time.Since(start), vm.runtime.Pending())
	}
	return nil
}

func (vm *VM) accepted(blk *chain.Block, outcomes []*chain.Outcome) {
	vm.metrics.accepted(outcomes)

	vm.activityLock.Lock()
	defer vm.activityLock.Unlock()
	for _, o := range outcomes {
		vm.activitySeq++
		vm.activity.Put(vm.activitySeq, o)
		if o.Status == chain.RolledBack {
			log.Debug("receipt rolled back", "height", blk.Hght, "receiver", o.Receiver, "err", o.Error, "refund", o.Refund)
		}
	}
}

// RecentActivity returns up to [limit] of the latest finalized receipts,
// newest first.
func (vm *VM) RecentActivity(limit int) []*chain.Outcome {
	vm.activityLock.Lock()
	defer vm.activityLock.Unlock()

	if limit <= 0 || limit > vm.config.ActivityCacheSize {
		limit = vm.config.ActivityCacheSize
	}
	activity := make([]*chain.Outcome, 0, limit)
	for seq := vm.activitySeq; seq > 0 && len(activity) < limit; seq-- {
		v, ok := vm.activity.Get(seq)
		if !ok {
			break
		}
		activity = append(activity, v.(*chain.Outcome))
	}
	// Reads refresh recency; restore insertion order so eviction keeps
	// dropping the oldest entries.
	for i := len(activity) - 1; i >= 0; i-- {
		vm.activity.Put(vm.activitySeq-uint64(i), activity[i])
	}
	return activity
}

// Healthy reports the last accepted block and whether receipts are piling
// up beyond the mempool limit.
func (vm *VM) Healthy() (map[string]interface{}, bool) {
	last := vm.runtime.LastAccepted()
	pending := vm.runtime.Pending()
	return map[string]interface{}{
		"height":  last.Hght,
		"pending": pending,
		"uptime":  time.Since(vm.startedAt).String(),
	}, pending < vm.config.MempoolSize
}
