// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the passprompt command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/passprompt/cmd/passprompt/cli"
	"github.com/bureau-foundation/passprompt/lib/version"
)

// Root builds and returns the complete passprompt command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "passprompt",
		Description: `passprompt: read a secret from the user.

The secret is requested through a pinentry program when one is
installed, or typed on the terminal with echo disabled otherwise.`,
		Subcommands: []*cli.Command{
			getCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					if len(args) > 0 {
						return cli.Validation("unexpected argument %q", args[0])
					}
					fmt.Fprintf(os.Stdout, "passprompt %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
