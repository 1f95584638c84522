// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/registry"
)

const (
	DefaultRegistry chain.AccountID = "nns"
	DefaultAdmin    chain.AccountID = "admin"
)

// DefaultGenesis deploys the registry at [DefaultRegistry] owned by
// [DefaultAdmin] and funds [accounts].
func DefaultGenesis(accounts ...chain.AccountID) *chain.Genesis {
	g := &chain.Genesis{
		StorageByteCost: chain.DefaultStorageByteCost,
		Accounts: []chain.Allocation{
			{
				ID:      DefaultRegistry,
				Balance: 10 * units.Avax,
				Code:    registry.CodeName,
				Init: &chain.InitCall{
					Method: "new_default_meta",
					Args:   `{"owner_id":"` + string(DefaultAdmin) + `"}`,
				},
			},
			{ID: DefaultAdmin, Balance: 1000 * units.Avax},
		},
	}
	for _, a := range accounts {
		g.Accounts = append(g.Accounts, chain.Allocation{ID: a, Balance: 1000 * units.Avax})
	}
	return g
}

// registryAccount is the first genesis account running the registry code.
func registryAccount(g *chain.Genesis) (chain.AccountID, bool) {
	for _, a := range g.Accounts {
		if a.Code == registry.CodeName {
			return a.ID, true
		}
	}
	return "", false
}
