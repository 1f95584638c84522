// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "nns-cli" implements nnsvm client operation interface.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/client"
)

const (
	requestTimeout = 30 * time.Second
	pollTimeout    = 2 * time.Minute
)

var (
	signer  string
	uri     string
	verbose bool

	rootCmd = &cobra.Command{
		Use:        "nns-cli",
		Short:      "Name service CLI",
		SuggestFor: []string{"nns-cli", "nnscli", "nnsctl"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		registerCmd,
		extendCmd,
		setupCmd,
		takeOwnershipCmd,
		setDefaultCmd,
		defaultNameCmd,
		expiryCmd,
		resolveCmd,
		setAddressCmd,
		setTextCmd,
		setIPFSCmd,
		balanceCmd,
		activityCmd,
		versionCmd,
	)

	rootCmd.PersistentFlags().StringVar(
		&signer,
		"signer",
		"",
		"account signing the calls",
	)
	rootCmd.PersistentFlags().StringVar(
		&uri,
		"endpoint",
		"http://127.0.0.1:9650",
		"RPC endpoint for VM",
	)
	rootCmd.PersistentFlags().BoolVar(
		&verbose,
		"verbose",
		false,
		"Print every receipt of issued calls",
	)
}

func Execute() error {
	return rootCmd.Execute()
}

func names() (client.Client, *client.Names, error) {
	cli := client.New(uri, requestTimeout)
	n, err := client.NewNames(cli)
	return cli, n, err
}

func signerID() (chain.AccountID, error) {
	id := chain.AccountID(signer)
	if err := id.Verify(); err != nil {
		return "", fmt.Errorf("%w: --signer %q", err, signer)
	}
	return id, nil
}

func exactArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected exactly %d arguments, got %d", n, len(args))
	}
	return nil
}

// issue runs [f] with a bounded context and reports its receipts.
func issue(f func(ctx context.Context) ([]*chain.Outcome, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	outcomes, err := f(ctx)
	if verbose {
		printOutcomes(outcomes)
	}
	if err != nil {
		return err
	}
	color.Green("confirmed (%d receipts)", len(outcomes))
	return nil
}

func printOutcomes(outcomes []*chain.Outcome) {
	for _, o := range outcomes {
		switch o.Status {
		case chain.Committed:
			color.Green("%s %s %v value=%s", o.Receiver, o.Status, o.Actions, string(o.Value))
		default:
			color.Red("%s %s %v error=%q refund=%d", o.Receiver, o.Status, o.Actions, o.Error, o.Refund)
		}
	}
}
