// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Result is the outcome of one statement. Exactly one of Columns/Rows or
// Error is meaningful; a successful statement without rows has no columns.
type Result struct {
	Statement    string   `json:"statement"`
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Failed reports whether the statement failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// HasRows reports whether the statement returned at least one row.
func (r Result) HasRows() bool {
	return len(r.Rows) > 0
}

// Records returns the rows as column name to value maps.
func (r Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// MarshalJSON converts driver specific values to display safe ones.
func (r Result) MarshalJSON() ([]byte, error) {
	type Alias Result
	a := Alias(r)

	if a.Columns == nil {
		a.Columns = []string{}
	}
	a.Rows = make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		a.Rows[i] = make([]any, len(row))
		for j, val := range row {
			a.Rows[i][j] = Normalize(val)
		}
	}
	return json.Marshal(a)
}

// Normalize turns a driver value into something printable: UUID bytes become
// canonical UUID strings, other byte slices become \x-prefixed hex and times
// use RFC 3339. NaN and infinities, which JSON cannot carry, become "NaN",
// "+Inf" and "-Inf". Driver value types such as pgtype.Numeric are unwrapped first.
func Normalize(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return v
	case float32:
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
		return v
	case [16]byte:
		return formatUUID(v[:])
	case []byte:
		return "\\x" + hex.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return fmt.Sprint(val)
		}
		return Normalize(dv)
	case fmt.Stringer:
		return v.String()
	}
	return val
}

func formatUUID(v []byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7],
		v[8], v[9], v[10], v[11], v[12], v[13], v[14], v[15])
}

// Unencodable replaces a result whose values could not be encoded with a
// failed result for the same statement, so the statement is still reported.
func Unencodable(r Result, err error) Result {
	return Result{
		Statement: r.Statement,
		Error:     "Failed to display result of query: " + r.Statement + "\n" + err.Error(),
	}
}

// Warning is a user facing message that is not an execution result.
type Warning struct {
	Message string
}

func (w *Warning) Error() string {
	return w.Message
}
