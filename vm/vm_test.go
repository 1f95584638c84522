// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/navara-labs/nnsvm/chain"
)

func testConfig() Config {
	var c Config
	c.SetDefaults()
	c.BuildInterval = 5 * time.Millisecond
	c.ActivityCacheSize = 4
	return c
}

func TestNewLoadsGenesisOnce(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	g := DefaultGenesis("alice")
	vm, err := New(db, g, testConfig())
	require.NoError(t, err)
	require.Equal(t, DefaultRegistry, vm.Registry())
	height := vm.Runtime().LastAccepted().Hght
	require.NotZero(t, height)

	_, err = vm.Submit(&chain.Call{Signer: "alice", Receiver: DefaultAdmin, Deposit: units.Avax, Nonce: "1"})
	require.NoError(t, err)
	require.NoError(t, vm.Runtime().Settle(1))

	reopened, err := New(db, g, testConfig())
	require.NoError(t, err)
	require.Equal(t, height+1, reopened.Runtime().LastAccepted().Hght)
	bal, err := reopened.Runtime().Balance("alice")
	require.NoError(t, err)
	require.Equal(t, 999*units.Avax, bal)
}

func TestNewRequiresRegistry(t *testing.T) {
	t.Parallel()

	g := &chain.Genesis{StorageByteCost: chain.DefaultStorageByteCost, Accounts: []chain.Allocation{{ID: "alice", Balance: 1}}}
	_, err := New(memdb.New(), g, testConfig())
	require.ErrorIs(t, err, ErrMissingField)
}

func TestRunBuildsBlocks(t *testing.T) {
	t.Parallel()

	vm, err := New(memdb.New(), DefaultGenesis("alice", "bob"), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return vm.Run(gctx) })

	txID, err := vm.Submit(&chain.Call{Signer: "alice", Receiver: "bob", Deposit: 5, Nonce: "n"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, pending, err := vm.Runtime().TxStatus(txID)
		return err == nil && !pending
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, g.Wait())

	bal, err := vm.Runtime().Balance("bob")
	require.NoError(t, err)
	require.Equal(t, 1000*units.Avax+5, bal)
}

func TestRecentActivity(t *testing.T) {
	t.Parallel()

	vm, err := New(memdb.New(), DefaultGenesis("alice", "bob"), testConfig())
	require.NoError(t, err)

	// Genesis init receipts already fill part of the feed.
	var txIDs []ids.ID
	for i := 0; i < 6; i++ {
		txID, err := vm.Submit(&chain.Call{Signer: "alice", Receiver: "bob", Deposit: uint64(i + 1), Nonce: "n"})
		require.NoError(t, err)
		txIDs = append(txIDs, txID)
		require.NoError(t, vm.Runtime().Settle(1))
		if i == 3 {
			require.Len(t, vm.RecentActivity(0), 4)
		}
	}

	activity := vm.RecentActivity(3)
	require.Len(t, activity, 3)
	for i, o := range activity {
		require.Equal(t, txIDs[5-i], o.TxID)
	}

	all := vm.RecentActivity(100)
	require.Len(t, all, 4)
	require.Equal(t, txIDs[2], all[3].TxID)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	vm, err := New(memdb.New(), DefaultGenesis("alice"), testConfig())
	require.NoError(t, err)
	h, err := vm.Handler()
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + HealthEndpoint)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+PublicEndpoint, "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"nnsvm.ping","params":{}}`))
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(b), `"success":true`)

	resp, err = http.Get(srv.URL + MetricsEndpoint)
	require.NoError(t, err)
	b, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(b), "nnsvm_receipts_total")
	require.Contains(t, string(b), "nnsvm_blocks_built_total")
}
