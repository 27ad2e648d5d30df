// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package statement

import "strings"

type lexState int

const (
	stateCode lexState = iota
	stateSingle
	stateDouble
	stateBacktick
	stateLineComment
	stateBlockComment
	stateDollar
)

// SplitLexical splits on ';' only when it appears in plain SQL code.
// Semicolons inside '...', "...", `...`, dollar quoted bodies ($$...$$ or
// $tag$...$tag$), line comments (-- and #) and block comments are kept.
// Statements are trimmed, empty ones dropped, terminators removed.
func SplitLexical(text string) []string {
	var (
		stmts []string
		state = stateCode
		tag   string
		start int
	)
	n := len(text)

	for i := 0; i < n; i++ {
		ch := text[i]

		switch state {
		case stateLineComment:
			if ch == '\n' {
				state = stateCode
			}
			continue
		case stateBlockComment:
			if ch == '*' && i+1 < n && text[i+1] == '/' {
				state = stateCode
				i++
			}
			continue
		case stateDollar:
			if strings.HasPrefix(text[i:], tag) {
				i += len(tag) - 1
				tag = ""
				state = stateCode
			}
			continue
		case stateSingle, stateDouble, stateBacktick:
			quote := quoteFor(state)
			if ch == '\\' && state != stateBacktick {
				// MySQL style escape; skip the escaped byte.
				i++
				continue
			}
			if ch == quote {
				// Doubled quote is an escaped quote.
				if i+1 < n && text[i+1] == quote {
					i++
				} else {
					state = stateCode
				}
			}
			continue
		}

		switch {
		case ch == '-' && i+1 < n && text[i+1] == '-':
			state = stateLineComment
			i++
		case ch == '#':
			state = stateLineComment
		case ch == '/' && i+1 < n && text[i+1] == '*':
			state = stateBlockComment
			i++
		case ch == '\'':
			state = stateSingle
		case ch == '"':
			state = stateDouble
		case ch == '`':
			state = stateBacktick
		case ch == '$':
			if t, ok := dollarTag(text[i:]); ok {
				tag = t
				state = stateDollar
				i += len(t) - 1
			}
		case ch == Terminator:
			if s := strings.TrimSpace(text[start:i]); s != "" {
				stmts = append(stmts, s)
			}
			start = i + 1
		}
	}

	if start < n {
		if s := strings.TrimSpace(text[start:]); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func quoteFor(s lexState) byte {
	switch s {
	case stateDouble:
		return '"'
	case stateBacktick:
		return '`'
	}
	return '\''
}

// dollarTag reports the opening tag ($$ or $name$) at the start of s.
// Positional parameters such as $1 are not tags.
func dollarTag(s string) (string, bool) {
	j := 1
	for j < len(s) && isTagChar(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return "", false
	}
	if j > 1 && s[1] >= '0' && s[1] <= '9' {
		return "", false
	}
	return s[:j+1], true
}

func isTagChar(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}
