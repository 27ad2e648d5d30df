// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the sqlbench CLI, a local SQL
// workbench for MySQL and PostgreSQL.
package main

import (
	"sqlbench/cli/cmd"
)

func main() {
	cmd.Execute()
}
