// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pinentry

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Option is one OPTION command sent to the agent. Options with an empty
// value are not sent.
type Option struct {
	Name  string
	Value string
}

// EnvironmentOptions returns the options describing where the agent
// should draw itself: the terminal type from $TERM, the terminal device
// attached to stdin, and the X display from $DISPLAY.
func EnvironmentOptions(getenv func(string) string, stdin *os.File) []Option {
	return []Option{
		{Name: "ttytype", Value: getenv("TERM")},
		{Name: "ttyname", Value: TerminalName(stdin)},
		{Name: "display", Value: getenv("DISPLAY")},
	}
}

// TerminalName returns the device path of the terminal behind file, or
// "" when file is not a terminal.
func TerminalName(file *os.File) string {
	if file == nil {
		return ""
	}
	descriptor := file.Fd()
	if !term.IsTerminal(int(descriptor)) {
		return ""
	}
	name, err := os.Readlink("/proc/self/fd/" + strconv.FormatUint(uint64(descriptor), 10))
	if err != nil {
		return ""
	}
	return name
}
