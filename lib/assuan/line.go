// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assuan

import "bytes"

// Client command keywords understood by pinentry.
const (
	CommandOption    = "OPTION"
	CommandSetTitle  = "SETTITLE"
	CommandSetPrompt = "SETPROMPT"
	CommandSetError  = "SETERROR"
	CommandSetDesc   = "SETDESC"
	CommandGetPin    = "GETPIN"
	CommandBye       = "BYE"
)

// ResponseKind classifies one agent response line.
type ResponseKind int

const (
	// ResponseOther is any line that is not OK or data, including
	// status and comment lines.
	ResponseOther ResponseKind = iota

	// ResponseOK acknowledges the previous command ("OK" or
	// "OK <comment>").
	ResponseOK

	// ResponseError rejects the previous command ("ERR <code> <message>").
	ResponseError

	// ResponseData carries one escaped fragment of a multi-line value
	// ("D <data>"). Fragments are concatenated in order.
	ResponseData
)

// String returns the protocol token for the kind.
func (kind ResponseKind) String() string {
	switch kind {
	case ResponseOK:
		return "OK"
	case ResponseError:
		return "ERR"
	case ResponseData:
		return "D"
	default:
		return "other"
	}
}

// Classify returns the kind of a response line by its prefix. The line
// should not include its trailing LF. Classification is by prefix only,
// so "OK Pleased to meet you" is ResponseOK.
func Classify(line []byte) ResponseKind {
	switch {
	case bytes.HasPrefix(line, []byte("OK")):
		return ResponseOK
	case bytes.HasPrefix(line, []byte("ERR")):
		return ResponseError
	case bytes.HasPrefix(line, []byte("D")):
		return ResponseData
	default:
		return ResponseOther
	}
}

// Payload returns the escaped data carried by a "D" line: everything
// after the two-byte "D " prefix. Lines of two bytes or fewer carry no
// data and yield nil. The returned slice aliases line.
func Payload(line []byte) []byte {
	if len(line) < 3 {
		return nil
	}
	return line[2:]
}

// FormatCommand builds one LF-terminated command line. With no argument
// the bare keyword is sent; otherwise the first argument is escaped and
// appended after a single space. Extra arguments are ignored.
func FormatCommand(keyword string, argument ...string) []byte {
	if len(argument) == 0 {
		return []byte(keyword + "\n")
	}
	return []byte(keyword + " " + Escape(argument[0]) + "\n")
}

// TrimLineEnding removes one trailing LF, and a CR before it, from a
// line read off the wire.
func TrimLineEnding(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
