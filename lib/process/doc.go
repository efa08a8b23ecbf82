// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These functions
// centralize the raw I/O that happens after the command tree has
// returned:
//
//   - Error reporting to stderr when no structured logger is in scope.
//   - Process exit with the code an error asks for.
//
// Library packages never exit the process; they return errors, and
// main() hands the final error to [Exit].
package process
