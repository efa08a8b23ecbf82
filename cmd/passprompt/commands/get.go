// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/passprompt/cmd/passprompt/cli"
	"github.com/bureau-foundation/passprompt/lib/config"
	"github.com/bureau-foundation/passprompt/lib/pinentry"
	"github.com/bureau-foundation/passprompt/lib/termprompt"
)

type getParams struct {
	prompt       string
	errorMessage string
	description  string
	configPath   string
	noPinentry   bool
	verbose      bool
}

func getCommand() *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Prompt for a secret and print it",
		Description: `Prompt for a secret and write it to stdout without a trailing newline.

The prompt is shown by the configured pinentry program. When pinentry is
disabled (--no-pinentry, PASSPROMPT_DISABLE_PINENTRY=1, or the config
file) or not installed, the prompt is shown on stderr and the secret is
typed on stdin with echo disabled.

Exits 1 without output when the prompt is cancelled or input ends.`,
		Usage: "passprompt get [flags]",
		Examples: []cli.Example{
			{
				Description: "Ask for a master password",
				Command:     `passprompt get --prompt "Master Password" --description "Unlock the vault"`,
			},
			{
				Description: "Retry after a failed attempt, on the terminal only",
				Command:     `passprompt get --no-pinentry --prompt PIN --error "Wrong PIN" --description "Unlock the card"`,
			},
		},
		Environment: []cli.EnvironmentVariable{
			{Name: config.ConfigEnvironmentVariable, Description: "configuration file, when --config is not given"},
			{Name: config.DisablePinentryEnvironmentVariable, Description: "set to 1 to always prompt on the terminal"},
			{Name: "TERM", Description: "passed to pinentry as ttytype"},
			{Name: "DISPLAY", Description: "passed to pinentry as display"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.StringVar(&params.prompt, "prompt", "Password", "label for the input field")
			flagSet.StringVar(&params.errorMessage, "error", "", "error shown above the input, such as why the last attempt failed")
			flagSet.StringVar(&params.description, "description", "", "what the secret is for")
			flagSet.StringVar(&params.configPath, "config", "", "configuration file (default: $"+config.ConfigEnvironmentVariable+")")
			flagSet.BoolVar(&params.noPinentry, "no-pinentry", false, "prompt on the terminal even if pinentry is available")
			flagSet.BoolVarP(&params.verbose, "verbose", "v", false, "log pinentry protocol and lifecycle events to stderr")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runGet(ctx, params, os.Stdin, os.Stdout, os.Stderr)
		},
	}
}

func runGet(ctx context.Context, params getParams, stdin *os.File, stdout io.Writer, stderr *os.File) error {
	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return cli.Validation("%w", err)
	}
	if params.noPinentry {
		cfg.Pinentry.Disable = true
	}

	level := slog.LevelWarn
	if params.verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level).With("command", "get")

	prompter := &pinentry.Prompter{
		Program:     cfg.Pinentry.Program,
		Title:       cfg.Pinentry.Title,
		Disabled:    cfg.Pinentry.Disable,
		GracePeriod: cfg.GracePeriodDuration(),
		Options:     pinentry.EnvironmentOptions(os.Getenv, stdin),
		Fallback:    termprompt.New(stdin, stderr, cfg.Prompt.Color),
		Logger:      logger,
	}

	result, err := prompter.Prompt(ctx, pinentry.Request{
		Prompt:      params.prompt,
		Error:       params.errorMessage,
		Description: params.description,
	})
	if err != nil {
		var agentError *pinentry.AgentError
		if errors.As(err, &agentError) {
			logger.Debug("pinentry failed", "status", agentError.Status.String())
		}
		return cli.Internal("%w", err)
	}
	if result == nil {
		return &cli.ExitError{Code: 1}
	}
	defer result.Close()

	if _, err := result.WriteTo(stdout); err != nil {
		return cli.Internal("writing secret: %w", err)
	}
	return nil
}

// loadConfig reads the file named by --config, or falls back to
// PASSPROMPT_CONFIG and the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment(os.Getenv)
	return cfg, nil
}
