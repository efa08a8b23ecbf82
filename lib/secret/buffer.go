// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds sensitive data in memory that is locked against swapping,
// excluded from core dumps, and zeroed on release. The backing memory is
// allocated via mmap outside the Go heap.
//
// A Buffer has a length (the secret) and a capacity (the mapping, always
// a whole number of pages). Growing past the capacity moves the secret
// to a larger mapping; the old mapping is zeroed before it is unmapped,
// so no copy of the secret is ever left behind.
//
// A Buffer must not be copied after creation. Use Close to release the
// memory when the secret is no longer needed. After Close, any access
// to the buffer's contents will panic.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// beforeUnmap runs on every mapping after it is zeroed and before it is
// returned to the kernel. Tests replace it to observe the wiped memory.
var beforeUnmap = func(data []byte) {}

// New allocates a new secret buffer holding size zero bytes. A size of
// zero is valid and yields an empty secret (distinct from no secret at
// all) that can be grown later.
//
// The caller must call Close when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("secret: buffer size must not be negative, got %d", size)
	}

	data, err := mapLocked(size)
	if err != nil {
		return nil, err
	}

	return &Buffer{
		data:   data,
		length: size,
	}, nil
}

// NewFromBytes creates a secret buffer from existing data. The source
// bytes are copied into the protected region and then zeroed in place,
// so the caller's original slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	buffer, err := New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}

	copy(buffer.data, source)
	Zero(source)

	return buffer, nil
}

// Bytes returns the secret data. The returned slice points directly into
// the mmap region. Do not hold references to it beyond the next call
// that changes the buffer's length, or beyond Close. Panics if the
// buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("read from")
	return b.data[:b.length]
}

// String returns the secret data as a string. The returned string is
// backed by a heap-allocated copy (Go strings are immutable and must
// live on the heap), so this should only be used at API boundaries
// that require string arguments. Prefer Bytes() when possible.
//
// Panics if the buffer has been closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("read from")
	return string(b.data[:b.length])
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Grow extends the secret by n zero bytes. The existing contents are
// preserved exactly. When the new length exceeds the current mapping,
// the contents move to a larger mapping and the old one is wiped and
// released.
func (b *Buffer) Grow(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("grow")
	if n < 0 {
		return fmt.Errorf("secret: cannot grow by negative size %d", n)
	}
	return b.growLocked(b.length + n)
}

// Append adds data to the end of the secret. Data is copied; the
// caller remains responsible for wiping its own slice.
func (b *Buffer) Append(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("append to")
	oldLength := b.length
	if err := b.growLocked(oldLength + len(data)); err != nil {
		return err
	}
	copy(b.data[oldLength:b.length], data)
	return nil
}

// Truncate shortens the secret to n bytes and zeros the discarded tail.
// Truncating to a length at or beyond the current length is a no-op.
func (b *Buffer) Truncate(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("truncate")
	if n < 0 {
		n = 0
	}
	if n >= b.length {
		return
	}
	Zero(b.data[n:b.length])
	b.length = n
}

// WriteTo writes the secret to writer without an intermediate heap
// copy. Implements io.WriterTo.
func (b *Buffer) WriteTo(writer io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mustBeOpen("write from")
	written, err := writer.Write(b.data[:b.length])
	return int64(written), err
}

// Close zeros the buffer contents, unlocks and unmaps the memory.
// After Close, any access to the buffer's Bytes() will panic.
// Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	err := unmapWiped(b.data)
	b.data = nil
	b.length = 0
	return err
}

// growLocked makes the length newLength, moving to a larger mapping
// when needed. Must be called with b.mu held.
func (b *Buffer) growLocked(newLength int) error {
	if newLength <= len(b.data) {
		// Bytes past the length are kept zero by Truncate and by
		// mmap itself, so the new region is already zero.
		b.length = newLength
		return nil
	}

	capacity := 2 * len(b.data)
	if capacity < newLength {
		capacity = newLength
	}
	data, err := mapLocked(capacity)
	if err != nil {
		return err
	}
	copy(data, b.data[:b.length])

	// The new mapping already holds the secret; a failure to release the
	// old one is reported but the buffer stays usable.
	releaseErr := unmapWiped(b.data)
	b.data = data
	b.length = newLength
	return releaseErr
}

func (b *Buffer) mustBeOpen(operation string) {
	if b.closed {
		panic("secret: " + operation + " closed buffer")
	}
}

// mapLocked returns a zero-filled anonymous mapping of at least size
// bytes (rounded up to whole pages, minimum one page) that is:
//   - Locked into physical RAM (mlock), preventing swap
//   - Excluded from core dumps (MADV_DONTDUMP)
//   - Outside the Go heap, invisible to the garbage collector
//
// The returned slice has length equal to the full mapping.
func mapLocked(size int) ([]byte, error) {
	pageSize := os.Getpagesize()
	mapped := (size + pageSize - 1) / pageSize * pageSize
	if mapped == 0 {
		mapped = pageSize
	}

	data, err := unix.Mmap(-1, 0, mapped, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return data, nil
}

// unmapWiped zeros a whole mapping, then unlocks and unmaps it. Errors
// from munlock/munmap are returned but not fatal; the memory is
// released when the process exits regardless.
func unmapWiped(data []byte) error {
	if data == nil {
		return nil
	}
	data = data[:cap(data)]
	Zero(data)
	beforeUnmap(data)

	var firstError error
	if err := unix.Munlock(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}

// Zero overwrites data with zeros. The loop lives in a function the
// compiler may not inline, and KeepAlive keeps data reachable past the
// writes, so the stores cannot be removed as dead.
//
//go:noinline
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
	runtime.KeepAlive(data)
}
