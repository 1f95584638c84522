// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/navara-labs/nnsvm/chain"
)

type metrics struct {
	calls         *prometheus.CounterVec
	receipts      *prometheus.CounterVec
	blocks        prometheus.Counter
	refunds       prometheus.Counter
	pending       prometheus.Gauge
	buildDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nnsvm_calls_submitted_total",
			Help: "Calls submitted over RPC by result",
		}, []string{"result"}),
		receipts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nnsvm_receipts_total",
			Help: "Finalized receipts by status",
		}, []string{"status"}),
		blocks: f.NewCounter(prometheus.CounterOpts{
			Name: "nnsvm_blocks_built_total",
			Help: "Blocks built",
		}),
		refunds: f.NewCounter(prometheus.CounterOpts{
			Name: "nnsvm_refunded_total",
			Help: "Deposits returned to predecessors by rolled back receipts",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "nnsvm_pending_receipts",
			Help: "Receipts waiting for a block",
		}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nnsvm_block_build_duration_seconds",
			Help:    "Duration of block building",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *metrics) accepted(outcomes []*chain.Outcome) {
	m.blocks.Inc()
	for _, o := range outcomes {
		m.receipts.WithLabelValues(o.Status.String()).Inc()
		m.refunds.Add(float64(o.Refund))
	}
}

func (m *metrics) observeBuild(d time.Duration, pending int) {
	m.buildDuration.Observe(d.Seconds())
	m.pending.Set(float64(pending))
}

func (m *metrics) submitted(err error) {
	if err != nil {
		m.calls.WithLabelValues("rejected").Inc()
		return
	}
	m.calls.WithLabelValues("accepted").Inc()
}
