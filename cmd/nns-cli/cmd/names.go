// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/parser"
)

var (
	years uint64
	owner string
)

var registerCmd = &cobra.Command{
	Use:   "register [options] <name>",
	Short: "Registers a name",
	Long: `
Registers a name for whole years. The attached deposit covers the
registration overhead plus the yearly price; a new name is minted to
--owner (the signer by default). An expired name goes to the signer.

$ nns-cli register wonder --signer alice --years 2
<<COMMENT
confirmed (3 receipts)
wonder expires 2028-10-19 08:00:00 +0000 UTC
COMMENT
`,
	RunE: registerFunc,
}

var extendCmd = &cobra.Command{
	Use:   "extend [options] <name>",
	Short: "Extends a live name held by the signer",
	RunE:  extendFunc,
}

var setupCmd = &cobra.Command{
	Use:   "setup [options] <name>",
	Short: "Deploys the resolver of a name held by the signer",
	RunE:  setupFunc,
}

var takeOwnershipCmd = &cobra.Command{
	Use:   "take-ownership [options] <name>",
	Short: "Makes the signer owner of the resolver of a name it holds",
	RunE:  takeOwnershipFunc,
}

var setDefaultCmd = &cobra.Command{
	Use:   "set-default [options] <name>",
	Short: "Points the default name of the signer at a name",
	RunE:  setDefaultFunc,
}

var defaultNameCmd = &cobra.Command{
	Use:   "default-name [options] <account>",
	Short: "Prints the default name of an account",
	RunE:  defaultNameFunc,
}

var expiryCmd = &cobra.Command{
	Use:   "expiry [options] <name>",
	Short: "Prints the expiration of a name",
	RunE:  expiryFunc,
}

func init() {
	registerCmd.Flags().Uint64Var(&years, "years", 1, "years to pay for")
	registerCmd.Flags().StringVar(&owner, "owner", "", "account a new name is minted to")
	extendCmd.Flags().Uint64Var(&years, "years", 1, "years to add")
}

func registerFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	name := args[0]
	if err := parser.CheckName(name); err != nil {
		return err
	}
	s, err := signerID()
	if err != nil {
		return err
	}
	o := s
	if owner != "" {
		o = chain.AccountID(owner)
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	if err := issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.Register(ctx, s, name, o, years)
	}); err != nil {
		return err
	}
	return printExpiry(name)
}

func extendFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
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
	if err := issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.Extend(ctx, s, args[0], years)
	}); err != nil {
		return err
	}
	return printExpiry(args[0])
}

func setupFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
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
	if err := issue(func(ctx context.Context) ([]*chain.Outcome, error) {
		return n.Setup(ctx, s, args[0])
	}); err != nil {
		return err
	}
	color.Cyan("resolver deployed at %s", n.Resolver(args[0]))
	return nil
}

func takeOwnershipFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
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
		return n.TakeOwnership(ctx, s, args[0])
	})
}

func setDefaultFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
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
		return n.SetDefault(ctx, s, args[0])
	})
}

func defaultNameFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	_, n, err := names()
	if err != nil {
		return err
	}
	d, err := n.DefaultName(chain.AccountID(args[0]))
	if err != nil {
		return err
	}
	if d == nil {
		color.Yellow("%s has no default name", args[0])
		return nil
	}
	color.Cyan("%s", *d)
	return nil
}

func expiryFunc(cmd *cobra.Command, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	return printExpiry(args[0])
}

func printExpiry(name string) error {
	_, n, err := names()
	if err != nil {
		return err
	}
	exp, err := n.ExpiredDate(name)
	if err != nil {
		return err
	}
	if exp == nil {
		color.Yellow("%s is not registered", name)
		return nil
	}
	t := time.UnixMilli(int64(*exp)).UTC()
	if time.Until(t) <= 0 {
		color.Red("%s expired %v", name, t)
		return nil
	}
	color.Cyan("%s expires %v (%v remaining)", name, t, time.Until(t).Round(time.Second))
	return nil
}
