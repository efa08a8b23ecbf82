// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"io"
)

const (
	// lineReaderSize is the initial read buffer, one page.
	lineReaderSize = 4096

	// maxLineLength bounds a single line, well above the 1000-byte
	// Assuan line limit while keeping locked memory small. A source
	// that sends more without a line feed gets ErrLineTooLong.
	maxLineLength = 16 << 10

	// maxEmptyReads is how many consecutive (0, nil) reads are
	// tolerated before giving up with io.ErrNoProgress.
	maxEmptyReads = 100
)

// ErrLineTooLong is returned when a line exceeds the reader's limit.
var ErrLineTooLong = errors.New("secret: line too long")

// LineReader frames LF-terminated lines from a stream that may carry
// secrets. It fills the same role as bufio.Reader, but its read buffer
// is a [Buffer]: bytes read ahead of the current line sit in locked
// memory, and Close wipes all of it.
//
// The read buffer is allocated on first use. A LineReader is not safe
// for concurrent use.
type LineReader struct {
	source io.Reader
	buffer *Buffer
	closed bool

	// start and end delimit the unread bytes in buffer.
	start int
	end   int

	// err is the sticky error from source, returned once the buffered
	// bytes are consumed.
	err error
}

// NewLineReader returns a LineReader over source. The caller must call
// Close to wipe and release the read buffer.
func NewLineReader(source io.Reader) *LineReader {
	return &LineReader{source: source}
}

// ReadSlice returns the next line including its LF. The slice points
// into the reader's protected memory and is only valid until the next
// call or Close.
//
// When source ends, a final unterminated line is returned together with
// io.EOF; an empty slice with io.EOF means no input is left. Other
// errors from source are returned with whatever partial line was
// buffered.
func (r *LineReader) ReadSlice() ([]byte, error) {
	if r.closed {
		panic("secret: read from closed line reader")
	}
	if r.buffer == nil {
		buffer, err := New(lineReaderSize)
		if err != nil {
			return nil, err
		}
		r.buffer = buffer
	}

	for {
		data := r.buffer.Bytes()
		if index := bytes.IndexByte(data[r.start:r.end], '\n'); index >= 0 {
			line := data[r.start : r.start+index+1]
			r.start += index + 1
			return line, nil
		}
		if r.err != nil {
			line := data[r.start:r.end]
			r.start = r.end
			return line, r.err
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// fill moves the unread bytes to the front of the buffer, growing it
// when full, and reads once more from source.
func (r *LineReader) fill() error {
	data := r.buffer.Bytes()
	if r.start > 0 {
		unread := copy(data, data[r.start:r.end])
		Zero(data[unread:r.end])
		r.start, r.end = 0, unread
	}

	if r.end == len(data) {
		if len(data) >= maxLineLength {
			return ErrLineTooLong
		}
		if err := r.buffer.Grow(len(data)); err != nil {
			return err
		}
		data = r.buffer.Bytes()
	}

	for range maxEmptyReads {
		count, err := r.source.Read(data[r.end:])
		r.end += count
		if err != nil {
			r.err = err
			return nil
		}
		if count > 0 {
			return nil
		}
	}
	r.err = io.ErrNoProgress
	return nil
}

// Close wipes and releases the read buffer, including any bytes read
// ahead of the last line returned. The source is not closed. Close is
// idempotent.
func (r *LineReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.buffer == nil {
		return nil
	}
	return r.buffer.Close()
}

// Closed reports whether Close has been called.
func (r *LineReader) Closed() bool {
	return r.closed
}
