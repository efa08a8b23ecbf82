// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"io"
)

// ReadLine reads one line from source into a new Buffer, stripping
// exactly one trailing line terminator ("\n" or "\r\n"). A final line
// without a terminator is returned as-is. An empty line yields an empty
// Buffer.
//
// Each byte is read directly into protected memory, one at a time, so
// no part of the line passes through a heap buffer and nothing past the
// terminator is consumed from source.
//
// When source is already at end of input, ReadLine returns (nil,
// io.EOF): no secret was entered, which callers must keep distinct from
// an entered empty secret.
func ReadLine(source io.Reader) (*Buffer, error) {
	line, err := New(0)
	if err != nil {
		return nil, err
	}

	emptyReads := 0
	for {
		length := line.Len()
		if err := line.Grow(1); err != nil {
			line.Close()
			return nil, err
		}

		count, readErr := source.Read(line.Bytes()[length:])
		if count == 0 {
			line.Truncate(length)
		} else if line.Bytes()[length] == '\n' {
			line.Truncate(length)
			if length > 0 && line.Bytes()[length-1] == '\r' {
				line.Truncate(length - 1)
			}
			return line, nil
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				line.Close()
				return nil, fmt.Errorf("reading line: %w", readErr)
			}
			if line.Len() == 0 {
				line.Close()
				return nil, io.EOF
			}
			return line, nil
		}

		if count == 0 {
			emptyReads++
			if emptyReads >= maxEmptyReads {
				line.Close()
				return nil, io.ErrNoProgress
			}
		} else {
			emptyReads = 0
		}
	}
}
