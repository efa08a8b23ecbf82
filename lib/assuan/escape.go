// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assuan

import "strings"

// Escape percent-encodes the bytes that would break a protocol line:
// "%" becomes "%25", CR becomes "%0d", and LF becomes "%0a". All other
// bytes pass through unchanged. The empty string escapes to itself.
func Escape(text string) string {
	if !strings.ContainsAny(text, "%\r\n") {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text) + 8)
	for index := 0; index < len(text); index++ {
		switch character := text[index]; character {
		case '%':
			builder.WriteString("%25")
		case '\r':
			builder.WriteString("%0d")
		case '\n':
			builder.WriteString("%0a")
		default:
			builder.WriteByte(character)
		}
	}
	return builder.String()
}

// Unescape decodes every "%XY" triplet in text into the byte with hex
// value XY. A "%" that is not followed by two hex digits ends the
// output at that point; the malformed remainder is dropped rather than
// reported.
func Unescape(text string) string {
	destination := make([]byte, len(text))
	written := UnescapeInto(destination, []byte(text))
	return string(destination[:written])
}

// UnescapeInto decodes source into destination and returns the number
// of bytes written. The decoded form is never longer than the encoded
// one, so destination must be at least len(source) bytes; UnescapeInto
// panics otherwise. Decoding follows the same truncation rule as
// [Unescape].
//
// No intermediate copies are made, which lets callers decode secret
// material directly into locked memory.
func UnescapeInto(destination, source []byte) int {
	if len(destination) < len(source) {
		panic("assuan: UnescapeInto destination shorter than source")
	}

	written := 0
	for index := 0; index < len(source); index++ {
		character := source[index]
		if character != '%' {
			destination[written] = character
			written++
			continue
		}

		if index+2 >= len(source) {
			break
		}
		high, highOK := hexValue(source[index+1])
		low, lowOK := hexValue(source[index+2])
		if !highOK || !lowOK {
			break
		}
		destination[written] = high<<4 | low
		written++
		index += 2
	}
	return written
}

func hexValue(character byte) (byte, bool) {
	switch {
	case character >= '0' && character <= '9':
		return character - '0', true
	case character >= 'a' && character <= 'f':
		return character - 'a' + 10, true
	case character >= 'A' && character <= 'F':
		return character - 'A' + 10, true
	}
	return 0, false
}
