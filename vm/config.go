// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"time"

	"github.com/navara-labs/nnsvm/chain"
)

type Config struct {
	BuildInterval time.Duration `serialize:"true" json:"buildInterval" yaml:"buildInterval"`

	// Blocks built per interval at most, so promise chains spanning several
	// blocks settle within one tick.
	BuildBurst int `serialize:"true" json:"buildBurst" yaml:"buildBurst"`

	MempoolSize       int `serialize:"true" json:"mempoolSize" yaml:"mempoolSize"`
	ActivityCacheSize int `serialize:"true" json:"activityCacheSize" yaml:"activityCacheSize"`
}

func (c *Config) SetDefaults() {
	c.BuildInterval = 500 * time.Millisecond
	c.BuildBurst = 8

	c.MempoolSize = chain.DefaultMaxPending
	c.ActivityCacheSize = 128
}
