// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"

	log "github.com/inconshreveable/log15"
	"gopkg.in/yaml.v3"
)

const genesisNonce = "genesis"

// Allocation provisions one account at genesis. When [Init] is set the
// account calls itself once its code is deployed.
type Allocation struct {
	ID      AccountID `yaml:"id" json:"id"`
	Balance uint64    `yaml:"balance" json:"balance"`
	Code    string    `yaml:"code,omitempty" json:"code,omitempty"`
	Init    *InitCall `yaml:"init,omitempty" json:"init,omitempty"`
}

type InitCall struct {
	Method string `yaml:"method" json:"method"`
	// Args is a JSON document.
	Args string `yaml:"args,omitempty" json:"args,omitempty"`
}

type Genesis struct {
	// StorageByteCost is the balance locked per stored byte.
	StorageByteCost uint64       `yaml:"storage_byte_cost" json:"storageByteCost"`
	Accounts        []Allocation `yaml:"accounts" json:"accounts"`
}

func ParseGenesis(b []byte) (*Genesis, error) {
	g := new(Genesis)
	if err := yaml.Unmarshal(b, g); err != nil {
		return nil, err
	}
	if g.StorageByteCost == 0 {
		g.StorageByteCost = DefaultStorageByteCost
	}
	return g, g.Verify()
}

func (g *Genesis) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

func (g *Genesis) Verify() error {
	seen := map[AccountID]struct{}{}
	for _, a := range g.Accounts {
		if err := a.ID.Verify(); err != nil {
			return fmt.Errorf("%w: genesis account %q", err, a.ID)
		}
		if _, ok := seen[a.ID]; ok {
			return fmt.Errorf("%w: genesis account %q", ErrAccountExists, a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.Init != nil && len(a.Code) == 0 {
			return fmt.Errorf("%w: genesis account %q has init but no code", ErrNoContract, a.ID)
		}
		if a.Init != nil && len(a.Init.Args) > 0 && !json.Valid([]byte(a.Init.Args)) {
			return fmt.Errorf("%w: genesis account %q", ErrInvalidArgs, a.ID)
		}
	}
	return nil
}

// Load provisions every allocation and runs the init calls to completion.
// Code bundles must be registered on [r] beforehand.
func (g *Genesis) Load(r *Runtime) error {
	for _, a := range g.Accounts {
		if err := r.CreateAccount(a.ID, a.Balance, a.Code); err != nil {
			return err
		}
	}
	for _, a := range g.Accounts {
		if a.Init == nil {
			continue
		}
		txID, err := r.Submit(&Call{
			Signer:   a.ID,
			Receiver: a.ID,
			Method:   a.Init.Method,
			Args:     json.RawMessage(a.Init.Args),
			Nonce:    genesisNonce,
		})
		if err != nil {
			return err
		}
		if err := r.Settle(8); err != nil {
			return err
		}
		outcomes, _, err := r.TxStatus(txID)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if o.Status != Committed {
				return fmt.Errorf("genesis init of %s failed: %s", a.ID, o.Error)
			}
		}
		log.Info("initialized genesis contract", "account", a.ID, "code", a.Code, "method", a.Init.Method)
	}
	return nil
}
