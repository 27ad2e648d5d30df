// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pterm/pterm"
)

// ConnErrorType represents the category of a connection failure
type ConnErrorType int

const (
	ConnErrorUnknown ConnErrorType = iota
	ConnErrorAuth
	ConnErrorRefused
	ConnErrorHost
	ConnErrorTimeout
	ConnErrorTLS
	ConnErrorDatabase
)

// MySQL server error numbers.
const (
	mysqlAccessDenied    = 1045
	mysqlUnknownDatabase = 1049
)

// ClassifyConnError categorizes a driver connection error.
func ClassifyConnError(err error) ConnErrorType {
	if err == nil {
		return ConnErrorUnknown
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlAccessDenied:
			return ConnErrorAuth
		case mysqlUnknownDatabase:
			return ConnErrorDatabase
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return ConnErrorAuth
		case "3D000":
			return ConnErrorDatabase
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnErrorHost
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return ConnErrorRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnErrorTimeout
	}

	return classifyMessage(err.Error())
}

// classifyMessage is the fallback for errors that lost their type on the way up.
func classifyMessage(errMsg string) ConnErrorType {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "access denied"),
		strings.Contains(lower, "password authentication failed"):
		return ConnErrorAuth
	case strings.Contains(lower, "unknown database"),
		strings.Contains(lower, "database") && strings.Contains(lower, "does not exist"):
		return ConnErrorDatabase
	case strings.Contains(lower, "connection refused"):
		return ConnErrorRefused
	case strings.Contains(lower, "no such host"):
		return ConnErrorHost
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return ConnErrorTimeout
	case strings.Contains(lower, "tls"), strings.Contains(lower, "ssl"),
		strings.Contains(lower, "certificate"):
		return ConnErrorTLS
	}
	return ConnErrorUnknown
}

// FormatConnectionError formats a connection failure in a user-friendly way.
// The driver message is always included, masked.
func FormatConnectionError(address string, err error) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Failed to connect to database server"))
	if address != "" {
		builder.WriteString(pterm.NewStyle(pterm.FgRed).Sprint(" at " + address))
	}
	builder.WriteString("\n\n")

	switch ClassifyConnError(err) {
	case ConnErrorAuth:
		builder.WriteString("The server rejected the user name or password.\n")
		builder.WriteString("  • Check the credentials and run 'sqlbench connect' again\n")
	case ConnErrorDatabase:
		builder.WriteString("The requested database does not exist on this server.\n")
		builder.WriteString("  • Omit --database or pick an existing one\n")
	case ConnErrorRefused:
		builder.WriteString("Nothing is accepting connections at this address.\n")
		builder.WriteString("  • Is the database server running locally?\n")
		builder.WriteString("  • Check the host, port and driver (--driver mysql|postgres)\n")
	case ConnErrorHost:
		builder.WriteString("The host name could not be resolved.\n")
		builder.WriteString("  • Try localhost or 127.0.0.1\n")
	case ConnErrorTimeout:
		builder.WriteString("The server did not answer in time.\n")
		builder.WriteString("  • Check firewalls and that the server is reachable\n")
	case ConnErrorTLS:
		builder.WriteString("The secure connection could not be established.\n")
		builder.WriteString("  • Check the server's TLS settings or the sslmode/tls parameter\n")
	default:
		builder.WriteString("The database driver reported an error.\n")
	}

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentConnectionError displays a formatted connection error
func PresentConnectionError(address string, err error) {
	fmt.Println()
	fmt.Println(FormatConnectionError(address, err))
	fmt.Println()
}
