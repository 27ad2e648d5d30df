// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render displays execution results. A Surface receives, per
// statement, either a Result or a bare warning and decides how it looks.
package render

import (
	"fmt"
	"io"
	"strings"

	"sqlbench/cli/internal/sqlexec"
)

// Surface consumes results in the order they are produced.
type Surface interface {
	Result(r sqlexec.Result)
	Warning(msg string)
}

// New returns the surface for an output format name ("table" or "json").
func New(format string, w io.Writer) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return NewTable(w), nil
	case "json":
		return NewJSON(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table or json)", format)
}

// Tally wraps a surface and counts what went through it.
type Tally struct {
	Surface
	Results  int
	Failures int
	Warnings int
}

// NewTally wraps s.
func NewTally(s Surface) *Tally {
	return &Tally{Surface: s}
}

func (t *Tally) Result(r sqlexec.Result) {
	t.Results++
	if r.Failed() {
		t.Failures++
	}
	t.Surface.Result(r)
}

func (t *Tally) Warning(msg string) {
	t.Warnings++
	t.Surface.Warning(msg)
}
