// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termprompt

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

// fakeConsole records every mode applied to it.
type fakeConsole struct {
	terminal bool
	current  Mode
	applied  []Mode

	getErr error
	// setErrs is consumed one entry per SetMode call; nil entries and
	// an exhausted slice mean success.
	setErrs []error
}

func newFakeConsole() *fakeConsole {
	var termios unix.Termios
	termios.Lflag = unix.ICANON | unix.ECHO | unix.ISIG
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 5
	return &fakeConsole{terminal: true, current: Mode{termios: termios}}
}

func (c *fakeConsole) IsTerminal() bool { return c.terminal }

func (c *fakeConsole) Mode() (Mode, error) {
	if c.getErr != nil {
		return Mode{}, c.getErr
	}
	return c.current, nil
}

func (c *fakeConsole) SetMode(mode Mode) error {
	var err error
	if len(c.setErrs) > 0 {
		err, c.setErrs = c.setErrs[0], c.setErrs[1:]
	}
	if err != nil {
		return err
	}
	c.applied = append(c.applied, mode)
	c.current = mode
	return nil
}

func TestMode_Masked(t *testing.T) {
	original := newFakeConsole().current
	masked := original.Masked()

	if masked.Echo() || masked.Canonical() {
		t.Error("masked mode still echoes or buffers lines")
	}
	if masked.termios.Lflag&unix.ISIG == 0 {
		t.Error("masked mode dropped unrelated flags")
	}
	if masked.termios.Cc[unix.VMIN] != 1 || masked.termios.Cc[unix.VTIME] != 0 {
		t.Errorf("masked VMIN/VTIME = %d/%d, want 1/0",
			masked.termios.Cc[unix.VMIN], masked.termios.Cc[unix.VTIME])
	}
	if !original.Echo() || !original.Canonical() {
		t.Error("Masked() modified the receiver")
	}
}

func TestMaskInput_RestoresOnce(t *testing.T) {
	console := newFakeConsole()
	original := console.current

	mask, err := maskInput(console)
	if err != nil {
		t.Fatalf("maskInput() error: %v", err)
	}
	if console.current.Echo() {
		t.Error("echo still enabled while masked")
	}

	for range 3 {
		if err := mask.Restore(); err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
	}

	if len(console.applied) != 2 {
		t.Fatalf("SetMode called %d times, want 2 (mask, restore)", len(console.applied))
	}
	if console.current != original {
		t.Error("Restore() did not put back the original mode")
	}
}

func TestMaskInput_NotATerminal(t *testing.T) {
	console := newFakeConsole()
	console.terminal = false
	console.getErr = errors.New("must not be called")

	mask, err := maskInput(console)
	if err != nil {
		t.Fatalf("maskInput() error: %v", err)
	}
	if err := mask.Restore(); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if len(console.applied) != 0 {
		t.Errorf("SetMode called %d times on a non-terminal", len(console.applied))
	}
}

func TestMaskInput_Failures(t *testing.T) {
	t.Run("read mode", func(t *testing.T) {
		console := newFakeConsole()
		console.getErr = errors.New("inappropriate ioctl")
		if _, err := maskInput(console); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("set mode", func(t *testing.T) {
		console := newFakeConsole()
		console.setErrs = []error{errors.New("inappropriate ioctl")}
		if _, err := maskInput(console); err == nil {
			t.Fatal("expected error")
		}
		if !console.current.Echo() {
			t.Error("mode changed despite the failure")
		}
	})
}
