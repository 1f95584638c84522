// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "nns-cli" implements nnsvm client operation interface.
package main

import (
	"fmt"
	"os"

	"github.com/navara-labs/nnsvm/cmd/nns-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nns-cli failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
