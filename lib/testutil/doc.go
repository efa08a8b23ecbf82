// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for passprompt packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern (select
// with time.After fallback) so that individual tests do not need direct
// time.After calls. It is the only place in the test suite where real
// wall-clock timeouts are used; everything else that waits on time uses
// lib/clock's fake clock.
//
// [ShellScript] writes an executable shell script for tests that need
// an external program, such as a fake pinentry agent.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no passprompt-internal dependencies.
package testutil
