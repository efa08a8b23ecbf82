// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ShellScript writes body as an executable /bin/sh script named name in
// a fresh temporary directory and returns its absolute path. Tests use
// it to stand in for external programs (pinentry agents in particular)
// without building binaries.
//
// The directory is automatically removed when the test completes.
func ShellScript(t *testing.T, name, body string) string {
	t.Helper()
	scriptPath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("writing script %s: %v", name, err)
	}
	return scriptPath
}
