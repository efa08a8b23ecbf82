// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// recordingT captures Fatalf instead of stopping the test. Fatalf
// panics so that RequireReceive stops, as it would under testing.T.
type recordingT struct {
	message string
}

type fatalCalled struct{}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(fatalCalled{})
}

func requireFatal(t *testing.T, run func(*recordingT)) string {
	t.Helper()
	recorder := &recordingT{}
	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				if _, ok := recovered.(fatalCalled); !ok {
					panic(recovered)
				}
			}
		}()
		run(recorder)
	}()
	if recorder.message == "" {
		t.Fatal("expected Fatalf")
	}
	return recorder.message
}

func TestRequireReceive_Value(t *testing.T) {
	channel := make(chan int, 1)
	channel <- 42
	if got := RequireReceive(t, channel, time.Second, "reading value"); got != 42 {
		t.Errorf("RequireReceive() = %d, want 42", got)
	}
}

func TestRequireReceive_Timeout(t *testing.T) {
	channel := make(chan int)
	message := requireFatal(t, func(recorder *recordingT) {
		RequireReceive(recorder, channel, 10*time.Millisecond, "waiting for %s", "exit status")
	})
	if !strings.Contains(message, "timed out") || !strings.Contains(message, "waiting for exit status") {
		t.Errorf("message = %q", message)
	}
}

func TestRequireReceive_Closed(t *testing.T) {
	channel := make(chan int)
	close(channel)
	message := requireFatal(t, func(recorder *recordingT) {
		RequireReceive(recorder, channel, time.Second)
	})
	if !strings.Contains(message, "channel closed") || !strings.Contains(message, "(no message)") {
		t.Errorf("message = %q", message)
	}
}

func TestShellScript(t *testing.T) {
	scriptPath := ShellScript(t, "hello", `echo "hello $1"`)

	info, err := os.Stat(scriptPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("script mode = %v, want executable", info.Mode())
	}

	output, err := exec.Command(scriptPath, "world").Output()
	if err != nil {
		t.Fatalf("running script: %v", err)
	}
	if string(output) != "hello world\n" {
		t.Errorf("output = %q, want %q", output, "hello world\n")
	}
}
