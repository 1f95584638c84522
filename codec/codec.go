// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec wraps the linear codec used for every record persisted by
// the runtime and the contracts.
package codec

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
)

const (
	// Version is the format of every persisted record.
	Version = 0

	// 1 MiB is far above the largest record (a token with metadata).
	maxRecordSize = 1 << 20
)

var (
	codecManager codec.Manager
	c            linearcodec.Codec
)

func init() {
	c = linearcodec.NewDefault()
	codecManager = codec.NewManager(maxRecordSize)

	if err := codecManager.RegisterCodec(Version, c); err != nil {
		panic(err)
	}
}

// Manager returns the initialized codec manager.
func Manager() codec.Manager {
	return codecManager
}

func Marshal(source interface{}) ([]byte, error) {
	return codecManager.Marshal(Version, source)
}

func Unmarshal(source []byte, destination interface{}) error {
	_, err := codecManager.Unmarshal(source, destination)
	return err
}
