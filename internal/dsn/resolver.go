// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses, normalizes and builds database connection strings.
// Credentials can come from a URL-style DSN (mysql://, postgres://) or from
// separate host/user/password values; both end up as a DSNInfo that the
// session manager turns into a driver-specific connection string.
package dsn

import (
	"strings"
)

const unknownTypeHint = "use mysql:// or postgres://"

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(dsn)

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DBTypePostgreSQL
	}
	if strings.HasPrefix(lower, "mysql://") {
		return DBTypeMySQL
	}

	return DBTypeUnknown
}

// ParseDBType maps a user-supplied driver name to a DBType.
func ParseDBType(name string) DBType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return DBTypeMySQL
	case "postgres", "postgresql", "pg", "pgx":
		return DBTypePostgreSQL
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver for a database type.
func ResolverFor(t DBType) (Resolver, error) {
	switch t {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	}
	return nil, NewParseError("", "unknown database type", unknownTypeHint)
}

// Parse parses a DSN string and returns normalized connection string
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	info, err := ParseInfo(dsn)
	if err != nil {
		return "", err
	}
	resolver, err := ResolverFor(info.Type)
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	if dsn == "" {
		return NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	resolver, err := ResolverFor(DetectDBType(dsn))
	if err != nil {
		return NewParseError(dsn, "unknown database type", unknownTypeHint)
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	resolver, err := ResolverFor(DetectDBType(dsn))
	if err != nil {
		return nil, NewParseError(dsn, "unknown database type", unknownTypeHint)
	}
	return resolver.Parse(dsn)
}

// FromCredentials builds DSN info from separately prompted values.
// The values are not validated beyond requiring a host and a user.
func FromCredentials(t DBType, host, port, user, password, database string) (*DSNInfo, error) {
	if t == DBTypeUnknown {
		return nil, NewParseError("", "unknown database type", "use --driver mysql or --driver postgres")
	}
	host = strings.TrimSpace(host)
	if host == "" {
		host = "localhost"
	}
	if strings.TrimSpace(user) == "" {
		return nil, NewParseError("", "missing username", "provide a user name")
	}
	info := &DSNInfo{
		Type:     t,
		Host:     host,
		Port:     strings.TrimSpace(port),
		User:     user,
		Password: password,
		Database: strings.TrimSpace(database),
		Params:   make(map[string]string),
	}
	if info.Port == "" {
		info.Port = t.DefaultPort()
	}
	resolver, err := ResolverFor(t)
	if err != nil {
		return nil, err
	}
	info.Original, err = resolver.Normalize(info)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// DriverDSN returns the driver connection string for info.
func DriverDSN(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	resolver, err := ResolverFor(info.Type)
	if err != nil {
		return "", err
	}
	return resolver.DriverDSN(info)
}
