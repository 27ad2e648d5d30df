// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLoadRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"SELECT 1;\nSELECT 2;\n",
		"  leading and trailing space  \r\n\ttabs;;",
		"SELECT 'ünïcödé', '😀';\n-- comment ; here\n",
		"no newline at end",
	}

	for i, text := range texts {
		p := filepath.Join(t.TempDir(), "nested", "dir", "q.sql")
		require.NoError(t, Export(p, text), "case %d", i)

		got, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, text, got, "case %d", i)

		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, []byte(text), raw, "case %d", i)
	}
}

func TestExportOverwrites(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, Export(p, "SELECT 1; SELECT 2; SELECT 3;"))
	require.NoError(t, Export(p, "SELECT 4;"))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 4;", got)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.sql"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
