// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data such
// as passwords and PINs.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it.
//
// A Buffer grows as data arrives, which lets protocol clients assemble
// a secret fragment by fragment:
//
//   - [New] -- allocates a zero-filled buffer of a given size (zero is fine)
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [ReadLine] -- reads one line of input into protected memory
//   - [LineReader] -- frames lines of a stream over a protected read buffer
//   - [Buffer.Append], [Buffer.Grow], [Buffer.Truncate] -- resize in place
//
// Whenever a buffer outgrows its mapping, the old mapping is zeroed
// before release. [Zero] is the non-elidable wipe used for every such
// overwrite and is exported for callers that hold secret bytes in
// ordinary slices. After Close, any access panics. Close is idempotent.
//
// Depends on golang.org/x/sys/unix. No passprompt-internal dependencies.
package secret
