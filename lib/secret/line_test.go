// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func readAllLines(t *testing.T, reader *LineReader) ([]string, error) {
	t.Helper()
	var lines []string
	for {
		line, err := reader.ReadSlice()
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
		if err != nil {
			return lines, err
		}
	}
}

func TestLineReader_ReadSlice(t *testing.T) {
	tests := []struct {
		name     string
		source   io.Reader
		expected []string
	}{
		{
			name:     "terminated lines",
			source:   strings.NewReader("OK\nD abc\nOK\n"),
			expected: []string{"OK\n", "D abc\n", "OK\n"},
		},
		{
			name:     "final line without terminator",
			source:   strings.NewReader("OK\nD pin"),
			expected: []string{"OK\n", "D pin"},
		},
		{
			name:     "one byte per read",
			source:   iotest.OneByteReader(strings.NewReader("OK Pleased\nD x\n")),
			expected: []string{"OK Pleased\n", "D x\n"},
		},
		{
			name:     "data arrives with EOF",
			source:   iotest.DataErrReader(strings.NewReader("OK\nERR 1")),
			expected: []string{"OK\n", "ERR 1"},
		},
		{
			name:     "empty",
			source:   strings.NewReader(""),
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reader := NewLineReader(test.source)
			defer reader.Close()

			lines, err := readAllLines(t, reader)
			if !errors.Is(err, io.EOF) {
				t.Fatalf("ReadSlice() error = %v, want io.EOF", err)
			}
			if strings.Join(lines, "|") != strings.Join(test.expected, "|") {
				t.Errorf("lines = %q, want %q", lines, test.expected)
			}
		})
	}
}

func TestLineReader_EOFIsSticky(t *testing.T) {
	reader := NewLineReader(strings.NewReader("OK"))
	defer reader.Close()

	if line, err := reader.ReadSlice(); string(line) != "OK" || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSlice() = %q, %v, want \"OK\", io.EOF", line, err)
	}
	if line, err := reader.ReadSlice(); len(line) != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSlice() after end = %q, %v, want empty, io.EOF", line, err)
	}
}

func TestLineReader_LongLineGrowsBuffer(t *testing.T) {
	long := "D " + strings.Repeat("x", 3*lineReaderSize)
	reader := NewLineReader(iotest.HalfReader(strings.NewReader("OK\n" + long + "\nOK\n")))
	defer reader.Close()

	lines, err := readAllLines(t, reader)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSlice() error = %v, want io.EOF", err)
	}
	if len(lines) != 3 || lines[1] != long+"\n" {
		t.Fatalf("expected the long line intact between two OK lines, got %d lines", len(lines))
	}
}

func TestLineReader_LineTooLong(t *testing.T) {
	reader := NewLineReader(strings.NewReader(strings.Repeat("x", maxLineLength+1)))
	defer reader.Close()

	if _, err := reader.ReadSlice(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("ReadSlice() error = %v, want ErrLineTooLong", err)
	}
}

func TestLineReader_ReadError(t *testing.T) {
	reader := NewLineReader(io.MultiReader(strings.NewReader("D ab"), failingReader{}))
	defer reader.Close()

	line, err := reader.ReadSlice()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("ReadSlice() error = %v, want the source's error", err)
	}
	if string(line) != "D ab" {
		t.Errorf("ReadSlice() partial line = %q, want %q", line, "D ab")
	}
}

func TestLineReader_NoProgress(t *testing.T) {
	reader := NewLineReader(stalledReader{})
	defer reader.Close()

	if _, err := reader.ReadSlice(); !errors.Is(err, io.ErrNoProgress) {
		t.Fatalf("ReadSlice() error = %v, want io.ErrNoProgress", err)
	}
}

func TestLineReader_CompactionZerosVacatedBytes(t *testing.T) {
	// The first line nearly fills the buffer, so the start of the second
	// line is moved to the front before the rest of it can be read.
	first := strings.Repeat("a", lineReaderSize-4) + "\n"
	reader := NewLineReader(iotest.HalfReader(strings.NewReader(first + "D secret\n")))
	defer reader.Close()

	for {
		line, err := reader.ReadSlice()
		if err != nil {
			t.Fatalf("ReadSlice() error: %v", err)
		}
		if string(line) == "D secret\n" {
			break
		}
	}

	data := reader.buffer.Bytes()
	for index, value := range data[reader.end:] {
		if value != 0 {
			t.Fatalf("byte %d past the buffered data is %q, want zero", reader.end+index, value)
		}
	}
}

func TestLineReader_CloseWipesReadAhead(t *testing.T) {
	released, allZero := observeUnmaps(t)

	// The source delivers everything in one read, so the secret line and
	// the line after it are both buffered before the first is returned.
	reader := NewLineReader(strings.NewReader("OK\nD hunter2\nOK\n"))
	if _, err := reader.ReadSlice(); err != nil {
		t.Fatalf("ReadSlice() error: %v", err)
	}

	if err := reader.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if *released != 1 {
		t.Fatalf("expected the read buffer to be released, got %d releases", *released)
	}
	if !*allZero {
		t.Fatal("read buffer released while still holding buffered input")
	}
	if !reader.Closed() {
		t.Error("expected Closed() to report true")
	}
	if err := reader.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestLineReader_CloseBeforeRead(t *testing.T) {
	released, _ := observeUnmaps(t)

	reader := NewLineReader(strings.NewReader("OK\n"))
	if err := reader.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if *released != 0 {
		t.Errorf("expected no mapping for an unused reader, got %d releases", *released)
	}
}
