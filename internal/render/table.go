// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"fmt"
	"io"

	"sqlbench/cli/internal/sqlexec"

	"github.com/pterm/pterm"
)

// Table renders results as pterm tables, one block per statement.
type Table struct {
	w io.Writer
}

// NewTable creates a table surface writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) Result(r sqlexec.Result) {
	if r.Failed() {
		fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgRed).Sprint("Error: "+r.Error))
		return
	}

	fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Executed Query - "+r.Statement+":"))

	if !r.HasRows() {
		msg := "Executed"
		if r.RowsAffected > 0 {
			msg = fmt.Sprintf("Executed (%d rows affected)", r.RowsAffected)
		}
		fmt.Fprintln(t.w, msg)
		fmt.Fprintln(t.w)
		return
	}

	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(tableData(r)).
		Srender()
	if err != nil {
		fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgRed).Sprint("Error: "+err.Error()))
		return
	}
	fmt.Fprintln(t.w, out)
	fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgGray).Sprintf("%d row(s)", len(r.Rows)))
	fmt.Fprintln(t.w)
}

func (t *Table) Warning(msg string) {
	fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgYellow).Sprint("Warning: "+msg))
}

// tableData builds the header row followed by one row per record.
func tableData(r sqlexec.Result) pterm.TableData {
	data := make(pterm.TableData, 0, len(r.Rows)+1)
	data = append(data, append([]string(nil), r.Columns...))
	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i := range r.Columns {
			if i < len(row) {
				cells[i] = cell(row[i])
			}
		}
		data = append(data, cells)
	}
	return data
}

func cell(v any) string {
	v = sqlexec.Normalize(v)
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
