package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// InsertBanks inserts banks within tx as a single multi-row statement.
func InsertBanks(tx *sql.Tx, banks []*Bank) error {
	if len(banks) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(banks))
	args := make([]any, 0, len(banks)*2)
	for _, b := range banks {
		placeholders = append(placeholders, "(?, ?)")
		args = append(args, b.ID, b.Name)
	}

	query := "INSERT INTO banks (id, name) VALUES " + strings.Join(placeholders, ", ")
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert banks: %w", err)
	}
	return nil
}

// InsertBranches inserts branches within tx as a single multi-row statement.
// Empty descriptive fields are stored as NULL.
func InsertBranches(tx *sql.Tx, branches []*Branch) error {
	if len(branches) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(branches))
	args := make([]any, 0, len(branches)*7)
	for _, b := range branches {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			b.IFSC, b.BankID,
			toNullString(b.BranchName), toNullString(b.Address),
			toNullString(b.City), toNullString(b.District), toNullString(b.State))
	}

	query := "INSERT INTO branches (ifsc, bank_id, branch, address, city, district, state) VALUES " +
		strings.Join(placeholders, ", ")
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert branches: %w", err)
	}
	return nil
}

// Truncate removes all branch and bank rows within tx, branches first so the
// foreign key constraint holds throughout.
func Truncate(tx *sql.Tx) error {
	if _, err := tx.Exec("DELETE FROM branches"); err != nil {
		return fmt.Errorf("failed to truncate branches: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM banks"); err != nil {
		return fmt.Errorf("failed to truncate banks: %w", err)
	}
	return nil
}
