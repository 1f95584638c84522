// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	log "github.com/inconshreveable/log15"
)

const (
	CreateAccountAction  = "create_account"
	TransferAction       = "transfer"
	DeployContractAction = "deploy_contract"
	FunctionCallAction   = "function_call"
	DeleteAccountAction  = "delete_account"
)

// Action is a single step of a receipt. All actions of a receipt either
// commit together or are rolled back together.
type Action interface {
	Execute(x *execution) error
	// Deposit is the value this action carries to the receiver and that is
	// refunded to the predecessor if the receipt rolls back.
	Deposit() uint64
	String() string
}

var (
	_ Action = &CreateAccount{}
	_ Action = &Transfer{}
	_ Action = &DeployContract{}
	_ Action = &FunctionCall{}
	_ Action = &DeleteAccount{}
)

type CreateAccount struct{}

func (*CreateAccount) Execute(x *execution) error {
	r := x.receipt
	if err := r.Receiver.Verify(); err != nil {
		return err
	}
	if !r.Receiver.IsSubAccountOf(r.Predecessor) {
		return fmt.Errorf("%w: %s is not under %s", ErrNotSubAccount, r.Receiver, r.Predecessor)
	}
	_, exists, err := GetAccount(x.db, r.Receiver)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, r.Receiver)
	}
	return PutAccount(x.db, r.Receiver, &Account{Created: x.block.Tmstmp})
}

func (*CreateAccount) Deposit() uint64 { return 0 }

func (*CreateAccount) String() string { return CreateAccountAction }

type Transfer struct {
	Amount uint64 `json:"amount"`
}

func (t *Transfer) Execute(x *execution) error {
	_, err := ModifyBalance(x.db, x.receipt.Receiver, true, t.Amount)
	return err
}

func (t *Transfer) Deposit() uint64 { return t.Amount }

func (t *Transfer) String() string { return TransferAction }

type DeployContract struct {
	Code string `json:"code"`
}

func (d *DeployContract) Execute(x *execution) error {
	if _, ok := x.runtime.codes[d.Code]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCode, d.Code)
	}
	a, exists, err := GetAccount(x.db, x.receipt.Receiver)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAccountMissing
	}
	a.Code = d.Code
	return PutAccount(x.db, x.receipt.Receiver, a)
}

func (*DeployContract) Deposit() uint64 { return 0 }

func (d *DeployContract) String() string { return DeployContractAction + ":" + d.Code }

type FunctionCall struct {
	Method   string `json:"method"`
	Args     []byte `json:"args"`
	Attached uint64 `json:"attached"`
}

func (f *FunctionCall) Execute(x *execution) error {
	r := x.receipt
	if f.Attached > 0 {
		if _, err := ModifyBalance(x.db, r.Receiver, true, f.Attached); err != nil {
			return err
		}
	}
	a, exists, err := GetAccount(x.db, r.Receiver)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountMissing, r.Receiver)
	}
	if len(a.Code) == 0 {
		return fmt.Errorf("%w: %s", ErrNoContract, r.Receiver)
	}
	code, ok := x.runtime.codes[a.Code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCode, a.Code)
	}
	ctx := x.callContext(a, code, f.Attached)
	v, err := code.New().Call(ctx, f.Method, f.Args)
	if err != nil {
		return err
	}
	if err := x.settle(ctx); err != nil {
		return err
	}
	x.value = v
	return nil
}

func (f *FunctionCall) Deposit() uint64 { return f.Attached }

func (f *FunctionCall) String() string { return FunctionCallAction + ":" + f.Method }

type DeleteAccount struct {
	Beneficiary AccountID `json:"beneficiary"`
}

func (d *DeleteAccount) Execute(x *execution) error {
	r := x.receipt
	a, exists, err := GetAccount(x.db, r.Receiver)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountMissing, r.Receiver)
	}
	if err := RemoveAccount(x.db, r.Receiver); err != nil {
		return err
	}
	x.deleted = true
	if a.Balance > 0 {
		x.spawn(r.Receiver, NewPromise(d.Beneficiary).Transfer(a.Balance))
	}
	log.Debug("deleted account", "account", r.Receiver, "beneficiary", d.Beneficiary, "balance", a.Balance)
	return nil
}

func (*DeleteAccount) Deposit() uint64 { return 0 }

func (*DeleteAccount) String() string { return DeleteAccountAction }
