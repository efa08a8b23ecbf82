// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package termprompt reads a secret directly from the terminal when no
// secret-entry agent is available.
//
// The prompt text goes to the diagnostic stream (normally stderr) so
// that stdout stays clean for the secret itself. While the secret is
// typed, the input terminal is switched out of canonical mode with echo
// disabled; the original mode is restored on every return path. When
// the diagnostic stream is a terminal, the prompt is erased afterward so
// that nothing about the exchange stays on screen.
//
// The secret is read straight into a [secret.Buffer].
package termprompt
