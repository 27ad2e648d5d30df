// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"encoding/json"
	"io"

	"sqlbench/cli/internal/sqlexec"
)

// JSON writes one JSON object per line.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON lines surface writing to w.
func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSON{enc: enc}
}

// Result writes r. A result that cannot be encoded is written as a failed
// result of the same statement instead.
func (j *JSON) Result(r sqlexec.Result) {
	if _, err := json.Marshal(r); err != nil {
		r = sqlexec.Unencodable(r, err)
	}
	_ = j.enc.Encode(r)
}

func (j *JSON) Warning(msg string) {
	_ = j.enc.Encode(map[string]string{"warning": msg})
}
