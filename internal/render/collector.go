// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import "sqlbench/cli/internal/sqlexec"

// Collector keeps everything it receives in memory.
type Collector struct {
	Results  []sqlexec.Result
	Warnings []string
}

func (c *Collector) Result(r sqlexec.Result) { c.Results = append(c.Results, r) }
func (c *Collector) Warning(msg string)      { c.Warnings = append(c.Warnings, msg) }

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.Results = nil
	c.Warnings = nil
}
