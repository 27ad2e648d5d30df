// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; passwords go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sqlbench/cli/internal/xdg"

	"github.com/joho/godotenv"
)

// Output formats understood by the render package.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Statement splitters.
const (
	SplitterNaive   = "naive"
	SplitterLexical = "lexical"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel    string      `json:"log_level"`
	Output      string      `json:"output"`
	Splitter    string      `json:"splitter"`
	ConfirmLine bool        `json:"confirm_line"`
	DB          DBConfig    `json:"db"`
	Serve       ServeConfig `json:"serve"`
}

// DBConfig holds the last used connection defaults. No password.
type DBConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     string `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Database string `json:"database,omitempty"`
}

// ServeConfig holds settings for the gRPC front end.
type ServeConfig struct {
	Addr string `json:"addr"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:    "info",
		Output:      OutputTable,
		Splitter:    SplitterNaive,
		ConfirmLine: true,
		DB: DBConfig{
			Driver: "mysql",
			Host:   "localhost",
		},
		Serve: ServeConfig{Addr: "127.0.0.1:7433"},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p. Fields absent from the file keep their defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, c.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (want %s or %s)", c.Output, OutputTable, OutputJSON)
	}
	switch c.Splitter {
	case SplitterNaive, SplitterLexical:
	default:
		return fmt.Errorf("invalid splitter %q (want %s or %s)", c.Splitter, SplitterNaive, SplitterLexical)
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes configuration to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// LoadEnv loads a .env file from the working directory if present.
// Existing environment variables are never overridden.
func LoadEnv() {
	_ = godotenv.Load()
}

// EnvDSN returns a DSN from SQLBENCH_DSN or DATABASE_URL, and the variable it came from.
func EnvDSN() (string, string) {
	for _, k := range []string{"SQLBENCH_DSN", "DATABASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, k
		}
	}
	return "", ""
}

// Verbose reports whether verbose output was requested through the environment.
func Verbose() bool {
	return os.Getenv("SQLBENCH_VERBOSE") == "1"
}
