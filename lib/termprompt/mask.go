// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termprompt

import "fmt"

// Console is the terminal the secret is typed on.
type Console interface {
	// IsTerminal reports whether the input is an interactive terminal.
	// Mode and SetMode are only called when it is.
	IsTerminal() bool
	Mode() (Mode, error)
	SetMode(Mode) error
}

// inputMask holds a console in masked mode until Restore. When the
// console is not a terminal the mask does nothing.
type inputMask struct {
	console  Console
	original Mode
	active   bool
}

// maskInput saves the console's mode and switches it to the masked
// mode. Callers defer Restore immediately after a successful call.
func maskInput(console Console) (*inputMask, error) {
	mask := &inputMask{console: console}
	if !console.IsTerminal() {
		return mask, nil
	}

	original, err := console.Mode()
	if err != nil {
		return nil, fmt.Errorf("reading terminal mode: %w", err)
	}
	if err := console.SetMode(original.Masked()); err != nil {
		return nil, fmt.Errorf("disabling terminal echo: %w", err)
	}

	mask.original = original
	mask.active = true
	return mask, nil
}

// Restore puts back the saved mode. Only the first call does anything.
func (m *inputMask) Restore() error {
	if !m.active {
		return nil
	}
	m.active = false
	if err := m.console.SetMode(m.original); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	return nil
}
