// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Code with bounded waits (grace periods, escalation steps) takes a
// [Clock] instead of calling time.After or time.Sleep directly. In
// production, [Real] provides the standard library behavior. In tests,
// [Fake] provides a clock that moves only when Advance is called, so a
// one-second grace period costs no wall-clock time and fires exactly
// when the test says so.
//
// When a goroutine calls After or Sleep on a [FakeClock], it registers
// a pending waiter. Use WaitForTimers to block until the waiter exists
// before calling Advance; this removes the race between registration
// and advancement.
package clock
