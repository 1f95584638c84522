// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	ajson "github.com/ava-labs/avalanchego/utils/json"
	log "github.com/inconshreveable/log15"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/version"
)

const PublicEndpoint = "/public"

type PublicService struct {
	vm *VM
}

type PingReply struct {
	Success bool `serialize:"true" json:"success"`
}

func (svc *PublicService) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	log.Info("ping")
	reply.Success = true
	return nil
}

type VersionReply struct {
	Version string `serialize:"true" json:"version"`
}

func (svc *PublicService) Version(_ *http.Request, _ *struct{}, reply *VersionReply) error {
	reply.Version = version.Version.String()
	return nil
}

type GenesisReply struct {
	Genesis  *chain.Genesis  `serialize:"true" json:"genesis"`
	Registry chain.AccountID `serialize:"true" json:"registry"`
}

func (svc *PublicService) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) (err error) {
	reply.Genesis = svc.vm.Genesis()
	reply.Registry = svc.vm.Registry()
	return nil
}

type SubmitCallArgs struct {
	Signer   chain.AccountID `serialize:"true" json:"signer"`
	Receiver chain.AccountID `serialize:"true" json:"receiver"`
	Method   string          `serialize:"true" json:"method,omitempty"`
	Args     json.RawMessage `serialize:"true" json:"args,omitempty"`
	Deposit  ajson.Uint64    `serialize:"true" json:"deposit"`
	Nonce    string          `serialize:"true" json:"nonce"`
}

type SubmitCallReply struct {
	TxID ids.ID `serialize:"true" json:"txId"`
}

func (svc *PublicService) SubmitCall(_ *http.Request, args *SubmitCallArgs, reply *SubmitCallReply) error {
	if len(args.Nonce) == 0 {
		return ErrMissingField
	}
	txID, err := svc.vm.Submit(&chain.Call{
		Signer:   args.Signer,
		Receiver: args.Receiver,
		Method:   args.Method,
		Args:     args.Args,
		Deposit:  uint64(args.Deposit),
		Nonce:    args.Nonce,
	})
	if err != nil {
		return err
	}
	reply.TxID = txID
	return nil
}

type ViewArgs struct {
	Receiver chain.AccountID `serialize:"true" json:"receiver"`
	Method   string          `serialize:"true" json:"method"`
	Args     json.RawMessage `serialize:"true" json:"args,omitempty"`
}

type ViewReply struct {
	Result json.RawMessage `serialize:"true" json:"result"`
}

func (svc *PublicService) View(_ *http.Request, args *ViewArgs, reply *ViewReply) error {
	out, err := svc.vm.runtime.View(args.Receiver, args.Method, args.Args)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		out = []byte("null")
	}
	reply.Result = out
	return nil
}

type TxStatusArgs struct {
	TxID ids.ID `serialize:"true" json:"txId"`
}

type TxStatusReply struct {
	Pending  bool             `serialize:"true" json:"pending"`
	Outcomes []*chain.Outcome `serialize:"true" json:"outcomes"`
}

func (svc *PublicService) TxStatus(_ *http.Request, args *TxStatusArgs, reply *TxStatusReply) error {
	if args.TxID == ids.Empty {
		return ErrInvalidTxID
	}
	outcomes, pending, err := svc.vm.runtime.TxStatus(args.TxID)
	if err != nil {
		return err
	}
	reply.Pending = pending
	reply.Outcomes = outcomes
	return nil
}

type AccountArgs struct {
	Account chain.AccountID `serialize:"true" json:"account"`
}

type BalanceReply struct {
	Balance ajson.Uint64 `serialize:"true" json:"balance"`
}

func (svc *PublicService) Balance(_ *http.Request, args *AccountArgs, reply *BalanceReply) error {
	bal, err := svc.vm.runtime.Balance(args.Account)
	if err != nil {
		return err
	}
	reply.Balance = ajson.Uint64(bal)
	return nil
}

type AccountReply struct {
	Exists  bool           `serialize:"true" json:"exists"`
	Account *chain.Account `serialize:"true" json:"account,omitempty"`
}

func (svc *PublicService) Account(_ *http.Request, args *AccountArgs, reply *AccountReply) error {
	a, exists, err := svc.vm.runtime.Account(args.Account)
	if err != nil {
		return err
	}
	reply.Exists = exists
	reply.Account = a
	return nil
}

type LastAcceptedReply struct {
	BlockID   ids.ID       `serialize:"true" json:"blockId"`
	Height    ajson.Uint64 `serialize:"true" json:"height"`
	Timestamp ajson.Uint64 `serialize:"true" json:"timestamp"`
}

func (svc *PublicService) LastAccepted(_ *http.Request, _ *struct{}, reply *LastAcceptedReply) error {
	blk := svc.vm.runtime.LastAccepted()
	reply.BlockID = blk.ID()
	reply.Height = ajson.Uint64(blk.Hght)
	reply.Timestamp = ajson.Uint64(blk.Tmstmp)
	return nil
}

type RecentActivityArgs struct {
	Limit int `serialize:"true" json:"limit,omitempty"`
}

type RecentActivityReply struct {
	Activity []*chain.Outcome `serialize:"true" json:"activity"`
}

func (svc *PublicService) RecentActivity(_ *http.Request, args *RecentActivityArgs, reply *RecentActivityReply) error {
	reply.Activity = svc.vm.RecentActivity(args.Limit)
	return nil
}
