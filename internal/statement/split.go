// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package statement turns a text buffer into executable SQL statements.
//
// Split is the baseline splitter: it cuts on every ';' with no regard for
// quoting, so a semicolon inside a literal or comment ends the statement early.
// SplitLexical is the opt-in splitter that understands quotes and comments.
package statement

import "strings"

// Terminator separates statements in a buffer.
const Terminator = ';'

// Split cuts text on ';', trims each piece and drops the empty ones.
func Split(text string) []string {
	parts := strings.Split(text, string(Terminator))
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Splitter is a function that breaks a buffer into statements.
type Splitter func(text string) []string

// ForName returns the splitter configured by name. Anything other than
// "lexical" selects the baseline Split.
func ForName(name string) Splitter {
	if strings.EqualFold(strings.TrimSpace(name), "lexical") {
		return SplitLexical
	}
	return Split
}
