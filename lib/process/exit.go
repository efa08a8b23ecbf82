// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that carry their own exit code.
// Such errors have already reported themselves, so nothing is printed.
type ExitCoder interface {
	ExitCode() int
}

// stderr and exit are replaced in tests.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(stderr, "error: %v\n", err)
	exit(1)
}

// Exit ends the process for the error returned by run(). A nil error
// exits 0; an ExitCoder exits with its code silently; anything else is
// reported through Fatal.
func Exit(err error) {
	if err == nil {
		exit(0)
		return
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		exit(coder.ExitCode())
		return
	}
	Fatal(err)
}
