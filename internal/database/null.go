package database

import "database/sql"

// nullStringValue converts a sql.NullString to a string (empty if not valid)
func nullStringValue(n sql.NullString) string {
	if n.Valid {
		return n.String
	}
	return ""
}

// toNullString converts a string to a sql.NullString, treating empty as NULL
// so optional CSV fields round-trip as NULL columns.
func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
