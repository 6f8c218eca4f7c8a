// Package dialect provides SQL fragment helpers for SQLite/PostgreSQL portability.
package dialect

import "strings"

const (
	SQLite3 = "sqlite3"
	PGX     = "pgx"
)

// IsPostgres returns true if the driver is PostgreSQL (pgx).
func IsPostgres(driver string) bool {
	return driver == PGX
}

// Like returns the case-insensitive LIKE operator for the driver.
//
//	SQLite:   LIKE (case-insensitive for ASCII by default)
//	Postgres: ILIKE
func Like(driver string) string {
	if IsPostgres(driver) {
		return "ILIKE"
	}
	return "LIKE"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern matching s anywhere, with wildcard
// characters in s escaped. Use it with ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ForUpdate returns the row-locking suffix for a SELECT inside a write
// transaction. SQLite serializes writers with BEGIN IMMEDIATE and has no
// row locks.
func ForUpdate(driver string) string {
	if IsPostgres(driver) {
		return " FOR UPDATE"
	}
	return ""
}
