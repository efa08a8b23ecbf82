// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// passprompt asks the user for a secret and writes it to stdout. It
// drives a pinentry program when one is available and falls back to a
// masked prompt on the terminal otherwise.
package main

import (
	"context"
	"os"

	"github.com/bureau-foundation/passprompt/cmd/passprompt/commands"
	"github.com/bureau-foundation/passprompt/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	return commands.Root().Execute(context.Background(), os.Args[1:])
}
