// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "nnsvm" runs a node hosting the name registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	log "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/cmd/nnsvm/version"
	"github.com/navara-labs/nnsvm/vm"
)

const shutdownTimeout = 5 * time.Second

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:        "nnsvm",
		Short:      "Name service node",
		SuggestFor: []string{"nnsvm", "nns"},
		RunE:       runFunc,
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	cobra.OnInitialize(initConfig)

	bindFlags(rootCmd.Flags())

	rootCmd.AddCommand(
		version.NewCommand(),
		genesisCmd,
	)
}

func bindFlags(fs *pflag.FlagSet) {
	var defaults vm.Config
	defaults.SetDefaults()

	fs.StringVar(&cfgFile, "config", "", "config file (yaml)")
	fs.String("http-addr", "127.0.0.1:9650", "address the RPC server listens on")
	fs.String("genesis", "", "genesis file (yaml); a default registry deployment when empty")
	fs.StringSlice("fund", []string{"alice", "bob"}, "accounts funded by the default genesis")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Duration("build-interval", defaults.BuildInterval, "interval between block building attempts")
	fs.Int("build-burst", defaults.BuildBurst, "blocks built per interval at most")
	fs.Int("mempool-size", defaults.MempoolSize, "pending receipts accepted at most")
	fs.Int("activity-cache-size", defaults.ActivityCacheSize, "finalized receipts kept for the activity feed")
	_ = viper.BindPFlags(fs)
}

func initConfig() {
	viper.SetEnvPrefix("NNSVM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func setupLogging() error {
	lvl, err := log.LvlFromString(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.LogfmtFormat())))
	return nil
}

func loadGenesis() (*chain.Genesis, error) {
	p := viper.GetString("genesis")
	if p == "" {
		var funded []chain.AccountID
		for _, a := range viper.GetStringSlice("fund") {
			funded = append(funded, chain.AccountID(a))
		}
		return vm.DefaultGenesis(funded...), nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return chain.ParseGenesis(b)
}

func runFunc(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}
	g, err := loadGenesis()
	if err != nil {
		return err
	}
	cfg := vm.Config{
		BuildInterval:     viper.GetDuration("build-interval"),
		BuildBurst:        viper.GetInt("build-burst"),
		MempoolSize:       viper.GetInt("mempool-size"),
		ActivityCacheSize: viper.GetInt("activity-cache-size"),
	}
	node, err := vm.New(memdb.New(), g, cfg)
	if err != nil {
		return err
	}
	h, err := node.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              viper.GetString("http-addr"),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("serving rpc", "addr", srv.Addr, "endpoint", vm.PublicEndpoint)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return node.Run(ectx)
	})
	eg.Go(func() error {
		<-ectx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return eg.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nnsvm failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
