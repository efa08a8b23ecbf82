// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node in the passprompt command tree.
type Command struct {
	// Name is the command name as typed by the user (e.g., "get").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Description is the detailed text at the top of the command's own
	// help. Summary is used when it is empty.
	Description string

	// Usage overrides the synthesized usage line.
	Usage string

	// Examples are shown in help after the flags.
	Examples []Example

	// Environment lists the variables the command reads, shown in help.
	Environment []EnvironmentVariable

	// Flags returns the command's flag set. It is called on each parse
	// and each help rendering. Nil means the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are dispatched by the first positional argument.
	Subcommands []*Command

	// Run executes a leaf command with the arguments left after flag
	// parsing.
	Run func(ctx context.Context, args []string) error

	// Output receives help text. It is inherited from the parent, and
	// os.Stderr at the root: stdout is reserved for the secret.
	Output io.Writer

	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// EnvironmentVariable documents one variable in help output.
type EnvironmentVariable struct {
	Name        string
	Description string
}

// Execute dispatches args through the tree and runs the selected
// command. Usage mistakes are returned as Validation errors after help
// or a --help hint has been shown.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.output())
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			c.PrintHelp(c.output())
			if len(args) == 0 {
				return Validation("subcommand required")
			}
			return Validation("subcommand required (got flag %q)", args[0])
		}
		sub := c.subcommand(args[0])
		if sub == nil {
			return Validation("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
		}
		return sub.Execute(ctx, args[1:])
	}

	args, err := c.parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		c.PrintHelp(c.output())
		return nil
	}
	if err != nil {
		return err
	}

	if c.Run == nil {
		return Internal("command %q has no action", c.fullName())
	}
	return c.Run(ctx, args)
}

// subcommand returns the child named name, linked to c, or nil.
func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub
		}
	}
	return nil
}

// parseFlags parses args against the command's flag set and returns the
// positional arguments. pflag.ErrHelp is passed through unwrapped.
func (c *Command) parseFlags(args []string) ([]string, error) {
	if c.Flags == nil {
		return args, nil
	}
	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, Validation("%s\n\nRun '%s --help' for usage.", err.Error(), c.fullName())
	}
	return flagSet.Args(), nil
}

// PrintHelp writes the command's help to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if text := cmp.Or(c.Description, c.Summary); text != "" {
		fmt.Fprintf(w, "%s\n\n", text)
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine(name))

	if len(c.Subcommands) > 0 {
		rows := make([][2]string, 0, len(c.Subcommands))
		for _, sub := range c.Subcommands {
			rows = append(rows, [2]string{sub.Name, sub.Summary})
		}
		writeTable(w, "Commands", rows)
	}

	if c.Flags != nil {
		var defaults strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&defaults)
		flagSet.PrintDefaults()
		if defaults.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
		}
	}

	if len(c.Environment) > 0 {
		rows := make([][2]string, 0, len(c.Environment))
		for _, variable := range c.Environment {
			rows = append(rows, [2]string{variable.Name, variable.Description})
		}
		writeTable(w, "Environment", rows)
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for index, example := range c.Examples {
			if index > 0 {
				fmt.Fprintln(w)
			}
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

func (c *Command) usageLine(name string) string {
	switch {
	case c.Usage != "":
		return c.Usage
	case len(c.Subcommands) > 0:
		return name + " <command> [flags]"
	default:
		return name + " [flags]"
	}
}

// output returns the help destination, walking up to the root.
func (c *Command) output() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.Output != nil {
			return command.Output
		}
	}
	return os.Stderr
}

// fullName returns the complete command path (e.g., "passprompt get").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// writeTable writes a titled two-column section.
func writeTable(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(table, "  %s\t%s\n", row[0], row[1])
	}
	table.Flush()
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
