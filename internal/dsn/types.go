// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "fmt"

// DBType represents the type of database
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeMySQL      DBType = "mysql"
	DBTypeUnknown    DBType = "unknown"
)

// DefaultPort returns the server port used when none is given.
func (t DBType) DefaultPort() string {
	switch t {
	case DBTypePostgreSQL:
		return "5432"
	case DBTypeMySQL:
		return "3306"
	}
	return ""
}

// DSNInfo contains parsed connection credentials.
// It is the credential record handed to the session manager; the password is
// kept in memory and in the OS keychain only.
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the DSN the info was parsed from
func (d *DSNInfo) String() string {
	return d.Original
}

// Address returns host:port, applying the driver default port.
func (d *DSNInfo) Address() string {
	port := d.Port
	if port == "" {
		port = d.Type.DefaultPort()
	}
	return d.Host + ":" + port
}

// Resolver is an interface for database-specific DSN resolution
type Resolver interface {
	// Parse parses a DSN string and returns normalized DSN info
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info to a canonical URL form suitable for storage
	Normalize(info *DSNInfo) (string, error)

	// Validate checks if the DSN is valid for the database type
	Validate(dsn string) error

	// DriverDSN converts DSN info to the connection string the driver expects
	DriverDSN(info *DSNInfo) (string, error)
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
