// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termprompt

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Mode is a saved terminal line discipline.
type Mode struct {
	termios unix.Termios
}

// Masked returns a copy of m with canonical mode and echo disabled,
// reading byte by byte with no timeout.
func (m Mode) Masked() Mode {
	masked := m
	masked.termios.Lflag &^= unix.ICANON | unix.ECHO
	masked.termios.Cc[unix.VMIN] = 1
	masked.termios.Cc[unix.VTIME] = 0
	return masked
}

// Echo reports whether typed characters are echoed.
func (m Mode) Echo() bool { return m.termios.Lflag&unix.ECHO != 0 }

// Canonical reports whether input is line-buffered by the terminal.
func (m Mode) Canonical() bool { return m.termios.Lflag&unix.ICANON != 0 }

// Terminal is the Console for an open file, normally os.Stdin.
type Terminal struct {
	file *os.File
}

// NewTerminal returns the Console for file.
func NewTerminal(file *os.File) *Terminal {
	return &Terminal{file: file}
}

func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(t.file.Fd()))
}

func (t *Terminal) Mode() (Mode, error) {
	termios, err := unix.IoctlGetTermios(int(t.file.Fd()), unix.TCGETS)
	if err != nil {
		return Mode{}, err
	}
	return Mode{termios: *termios}, nil
}

// SetMode applies mode immediately, without draining pending output.
func (t *Terminal) SetMode(mode Mode) error {
	return unix.IoctlSetTermios(int(t.file.Fd()), unix.TCSETS, &mode.termios)
}
