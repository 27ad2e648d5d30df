// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization
type PostgreSQLResolver struct{}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{}
}

// Parse parses a PostgreSQL DSN string (postgres:// or postgresql://).
// An omitted database lets the server default it to the user name.
func (r *PostgreSQLResolver) Parse(dsn string) (*DSNInfo, error) {
	return parseURL(DBTypePostgreSQL, []string{"postgresql", "postgres"}, dsn)
}

// Normalize converts DSN info to a postgresql:// URL
func (r *PostgreSQLResolver) Normalize(info *DSNInfo) (string, error) {
	return buildURL("postgresql", info)
}

// DriverDSN returns the URL form, which pgx accepts directly.
func (r *PostgreSQLResolver) DriverDSN(info *DSNInfo) (string, error) {
	return r.Normalize(info)
}

// Validate checks if the DSN is valid for PostgreSQL
func (r *PostgreSQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	return validatePort(dsn, info.Port)
}
