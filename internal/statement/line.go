// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package statement

import (
	"strings"
	"unicode/utf8"
)

// CurrentLine returns the trimmed line of text that contains offset, counted
// in characters (runes) from the start of text, as an editor cursor is.
// It scans backward and forward from offset to the nearest '\n' on each side.
// Offsets outside the text are clamped. The boolean is false when the line is
// blank, meaning there is nothing to run.
func CurrentLine(text string, offset int) (string, bool) {
	pos := byteOffset(text, offset)

	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := len(text)
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		end = pos + i
	}

	line := strings.TrimSpace(text[start:end])
	return line, line != ""
}

// byteOffset converts a rune offset into a byte index of text.
func byteOffset(text string, runes int) int {
	pos := 0
	for n := 0; n < runes && pos < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos
}
