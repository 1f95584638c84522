// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/navara-labs/nnsvm/chain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [options] <name> <network>",
	Short: "Resolves the address a name stores for a network",
	Long: `
$ nns-cli resolve wonder avax
<<COMMENT
wonder avax => X-avax1xyz
COMMENT
`,
	RunE: resolveFunc,
}

var setAddressCmd = &cobra.Command{
	Use:   "set-address [options] <name> <network=address>...",
	Short: "Stores addresses in the resolver of a name",
	RunE:  setAddressFunc,
}

var setTextCmd = &cobra.Command{
	Use:   "set-text [options] <name> <key=value>...",
	Short: "Stores text records in the resolver of a name",
	RunE:  setTextFunc,
}

var setIPFSCmd = &cobra.Command{
	Use:   "set-ipfs [options] <name> <content hash>",
	Short: "Stores the content hash in the resolver of a name",
	RunE:  setIPFSFunc,
}

func resolveFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	addr, err := n.Resolve(args[0], args[1])
	if err != nil {
		return err
	}
	if addr == nil {
		color.Yellow("%s has no %s address", args[0], args[1])
		return nil
	}
	color.Cyan("%s %s => %s", args[0], args[1], *addr)
	return nil
}

// parsePairs splits "k=v" arguments.
func parsePairs(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least 1 key=value pair")
	}
	pairs := make(map[string]string, len(args))
	for _, a := range args {
		i := strings.Index(a, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid pair %q, expected key=value", a)
		}
		pairs[a[:i]] = a[i+1:]
	}
	return pairs, nil
}

func setAddressFunc(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected a name and at least 1 network=address pair")
	}
	pairs, err := parsePairs(args[1:])
	if err != nil {
		return err
	}
	s, err := signerID()
	if err != nil {
		return err
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	return issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.SetAddresses(ctx, s, args[0], pairs)
	})
}

func setTextFunc(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected a name and at least 1 key=value pair")
	}
	pairs, err := parsePairs(args[1:])
	if err != nil {
		return err
	}
	s, err := signerID()
	if err != nil {
		return err
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	return issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.SetTextRecords(ctx, s, args[0], pairs)
	})
}

func setIPFSFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	s, err := signerID()
	if err != nil {
		return err
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	return issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.SetIPFS(ctx, s, args[0], args[1])
	})
}
