// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/client"
)

var activityLimit int

var balanceCmd = &cobra.Command{
	Use:   "balance [options] <account>",
	Short: "Prints the balance and storage usage of an account",
	RunE:  balanceFunc,
}

var activityCmd = &cobra.Command{
	Use:   "activity [options]",
	Short: "View recent receipts on the network",
	RunE:  activityFunc,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints out the node version",
	RunE:  versionFunc,
}

func init() {
	activityCmd.Flags().IntVar(&activityLimit, "limit", 20, "receipts to show")
}

func balanceFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	cli := client.New(uri, requestTimeout)
	a, exists, err := cli.Account(chain.AccountID(args[0]))
	if err != nil {
		return err
	}
	if !exists {
		color.Yellow("%s does not exist", args[0])
		return nil
	}
	color.Cyan(
		"%s balance=%d (%.4f AVAX) code=%q stateUsage=%d",
		args[0], a.Balance, float64(a.Balance)/float64(units.Avax), a.Code, a.StateUsage,
	)
	return nil
}

func activityFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	cli := client.New(uri, requestTimeout)
	activity, err := cli.RecentActivity(activityLimit)
	if err != nil {
		return err
	}
	for _, o := range activity {
		fmt.Printf("height=%d tx=%s ", o.Height, o.TxID)
		printOutcomes([]*chain.Outcome{o})
	}
	return nil
}

func versionFunc(cmd *cobra.Command, args []string) error {
	cli := client.New(uri, requestTimeout)
	v, err := cli.Version()
	if err != nil {
		return err
	}
	color.Cyan("%s", v)
	return nil
}
