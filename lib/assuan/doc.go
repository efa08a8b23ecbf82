// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assuan implements the subset of the Assuan line protocol that
// a pinentry client needs: argument escaping, command formatting, and
// response classification.
//
// Every protocol message is one LF-terminated line. Arguments are
// percent-escaped so that "%", CR, and LF inside user text cannot split
// or corrupt a line:
//
//   - [Escape] -- encodes argument text for transmission
//   - [Unescape] -- decodes a string (non-secret data)
//   - [UnescapeInto] -- decodes into a caller-owned buffer, used to
//     decode secrets straight into protected memory
//
// [FormatCommand] builds a client command line and [Classify] sorts an
// agent response line into OK, ERR, data, or anything else.
//
// This package has no passprompt-internal dependencies.
package assuan
