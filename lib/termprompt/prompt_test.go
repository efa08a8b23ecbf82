// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termprompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/passprompt/lib/config"
)

func newTestPrompter(input string, console Console, color string, erase bool) (*Prompter, *bytes.Buffer) {
	var output bytes.Buffer
	return &Prompter{
		input:    strings.NewReader(input),
		output:   &output,
		console:  console,
		renderer: newRenderer(&output, color),
		erase:    erase,
	}, &output
}

func TestPromptSecret_ReadsLine(t *testing.T) {
	console := newFakeConsole()
	original := console.current
	prompter, output := newTestPrompter("hunter2\n", console, config.ColorNever, false)

	result, err := prompter.PromptSecret("Master Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	if result == nil {
		t.Fatal("PromptSecret() returned no secret")
	}
	defer result.Close()

	if result.String() != "hunter2" {
		t.Errorf("PromptSecret() = %q, want %q", result.String(), "hunter2")
	}
	if got, want := output.String(), "Enter password\n\nMaster Password: \n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(console.applied) != 2 {
		t.Fatalf("SetMode called %d times, want 2", len(console.applied))
	}
	if console.applied[0].Echo() || console.applied[0].Canonical() {
		t.Error("secret was read with echo or line buffering enabled")
	}
	if console.current != original {
		t.Error("terminal mode not restored")
	}
}

func TestPromptSecret_ErrorLine(t *testing.T) {
	prompter, output := newTestPrompter("pw\r\n", newFakeConsole(), config.ColorNever, false)

	result, err := prompter.PromptSecret("PIN", "Wrong PIN", "Unlock the vault")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	defer result.Close()

	if result.String() != "pw" {
		t.Errorf("PromptSecret() = %q, want %q", result.String(), "pw")
	}
	if got, want := output.String(), "Unlock the vault\n\nWrong PIN\nPIN: \n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPromptSecret_EndOfInput(t *testing.T) {
	console := newFakeConsole()
	original := console.current
	prompter, _ := newTestPrompter("", console, config.ColorNever, false)

	result, err := prompter.PromptSecret("Master Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	if result != nil {
		t.Fatal("PromptSecret() returned a secret at end of input")
	}

	if len(console.applied) != 2 {
		t.Fatalf("SetMode called %d times, want exactly one mask and one restore", len(console.applied))
	}
	if console.current != original {
		t.Error("terminal mode not restored")
	}
}

func TestPromptSecret_EmptyLineIsEmptySecret(t *testing.T) {
	prompter, _ := newTestPrompter("\n", newFakeConsole(), config.ColorNever, false)

	result, err := prompter.PromptSecret("Master Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	if result == nil {
		t.Fatal("an entered empty line must not read as no secret")
	}
	defer result.Close()
	if result.Len() != 0 {
		t.Errorf("PromptSecret() length = %d, want 0", result.Len())
	}
}

func TestPromptSecret_PipedInput(t *testing.T) {
	console := newFakeConsole()
	console.terminal = false
	prompter, _ := newTestPrompter("from-a-pipe", console, config.ColorNever, false)

	result, err := prompter.PromptSecret("Master Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	defer result.Close()

	if result.String() != "from-a-pipe" {
		t.Errorf("PromptSecret() = %q, want %q", result.String(), "from-a-pipe")
	}
	if len(console.applied) != 0 {
		t.Error("terminal mode changed for non-terminal input")
	}
}

func TestPromptSecret_Erase(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		errorMessage string
		description  string
		lines        int
	}{
		{name: "description only", input: "pw\n", description: "Enter password", lines: 3},
		{name: "with error", input: "pw\n", errorMessage: "Wrong password", description: "Enter password", lines: 4},
		{name: "multi-line description", input: "pw\n", description: "Vault: work\nEnter password", lines: 4},
		{name: "end of input", input: "", description: "Enter password", lines: 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			prompter, output := newTestPrompter(test.input, newFakeConsole(), config.ColorNever, true)

			result, err := prompter.PromptSecret("Password", test.errorMessage, test.description)
			if err != nil {
				t.Fatalf("PromptSecret() error: %v", err)
			}
			if result != nil {
				defer result.Close()
			}

			suffix := ansi.CursorUp(test.lines) + ansi.EraseScreenBelow
			if !strings.HasSuffix(output.String(), suffix) {
				t.Errorf("output %q does not end with %q", output.String(), suffix)
			}
		})
	}
}

func TestPromptSecret_NoEraseWithoutTerminal(t *testing.T) {
	prompter, output := newTestPrompter("pw\n", newFakeConsole(), config.ColorNever, false)

	result, err := prompter.PromptSecret("Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	defer result.Close()

	if strings.Contains(output.String(), "\x1b") {
		t.Errorf("escape sequences written to a non-terminal: %q", output.String())
	}
}

func TestPromptSecret_Color(t *testing.T) {
	prompter, output := newTestPrompter("pw\n", newFakeConsole(), config.ColorAlways, false)

	result, err := prompter.PromptSecret("Password", "Wrong password", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	defer result.Close()

	if !strings.Contains(output.String(), "\x1b[") {
		t.Errorf("no styling in output: %q", output.String())
	}
	if got, want := ansi.Strip(output.String()), "Enter password\n\nWrong password\nPassword: \n"; got != want {
		t.Errorf("visible output = %q, want %q", got, want)
	}
}

func TestPromptSecret_RestoreFailure(t *testing.T) {
	console := newFakeConsole()
	console.setErrs = []error{nil, errors.New("terminal gone")}
	prompter, _ := newTestPrompter("pw\n", console, config.ColorNever, false)

	result, err := prompter.PromptSecret("Password", "", "Enter password")
	if err == nil {
		t.Fatal("expected error when the terminal mode cannot be restored")
	}
	if result != nil {
		t.Fatal("PromptSecret() returned a secret despite the failure")
	}
}

func TestPromptSecret_MaskFailureReadsNothing(t *testing.T) {
	console := newFakeConsole()
	console.getErr = errors.New("inappropriate ioctl")
	prompter, _ := newTestPrompter("pw\n", console, config.ColorNever, false)

	if _, err := prompter.PromptSecret("Password", "", "Enter password"); err == nil {
		t.Fatal("expected error")
	}
	remaining, _ := io.ReadAll(prompter.input)
	if string(remaining) != "pw\n" {
		t.Errorf("input consumed despite the failure, remaining %q", remaining)
	}
}

func TestPromptSecret_ReadsOnlyTheLine(t *testing.T) {
	prompter, _ := newTestPrompter("hunter2\nnext secret\n", newFakeConsole(), config.ColorNever, false)

	result, err := prompter.PromptSecret("Password", "", "Enter password")
	if err != nil {
		t.Fatalf("PromptSecret() error: %v", err)
	}
	defer result.Close()

	remaining, _ := io.ReadAll(prompter.input)
	if string(remaining) != "next secret\n" {
		t.Errorf("input read past the secret, remaining %q", remaining)
	}
}
