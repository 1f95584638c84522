// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

// Contract handles function calls against a deployed account. Handlers are
// stateless: everything they persist goes through [CallContext.Database].
type Contract interface {
	Call(ctx *CallContext, method string, args []byte) ([]byte, error)
}

// Code is a deployable code bundle.
type Code struct {
	Name string
	// Size is the number of bytes the bundle occupies in account storage.
	Size uint64
	New  func() Contract
}
