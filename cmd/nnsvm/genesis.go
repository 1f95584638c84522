// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/vm"
)

const fsModeWrite = 0o600

var genesisFile string

var genesisCmd = &cobra.Command{
	Use:   "genesis [options] [funded accounts]",
	Short: "Writes a default genesis with the registry deployed",
	Long: `
Writes a genesis deploying the registry at "nns", owned by "admin",
and funding the given accounts.

$ nnsvm genesis alice bob --genesis-file genesis.yaml
`,
	RunE: genesisFunc,
}

func init() {
	genesisCmd.Flags().StringVar(&genesisFile, "genesis-file", "genesis.yaml", "genesis file path")
}

func genesisFunc(cmd *cobra.Command, args []string) error {
	funded := make([]chain.AccountID, 0, len(args))
	for _, a := range args {
		funded = append(funded, chain.AccountID(a))
	}
	g := vm.DefaultGenesis(funded...)
	if err := g.Verify(); err != nil {
		return err
	}
	b, err := g.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(genesisFile, b, fsModeWrite); err != nil {
		return err
	}
	fmt.Printf("created genesis and saved to %s\n", genesisFile)
	return nil
}
