package database

import (
	"database/sql"
	"fmt"
)

// Bank represents a bank row
type Bank struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BankFilter narrows bank queries. Search is a case-insensitive substring
// match on the bank name.
type BankFilter struct {
	Search string
}

func (f BankFilter) where() (string, []any) {
	if f.Search == "" {
		return "", nil
	}
	return " WHERE instr(lower(name), lower(?)) > 0", []any{f.Search}
}

// GetBank retrieves a bank by ID. Returns (nil, nil) when absent.
func (db *DB) GetBank(id int64) (*Bank, error) {
	bank := &Bank{}
	err := db.QueryRow("SELECT id, name FROM banks WHERE id = ?", id).Scan(&bank.ID, &bank.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return bank, nil
}

// ListBanks returns banks matching the filter, ordered by id ascending for
// stable pagination.
func (db *DB) ListBanks(f BankFilter, limit, offset int) ([]*Bank, error) {
	where, args := f.where()
	args = append(args, limit, offset)

	rows, err := db.Query("SELECT id, name FROM banks"+where+" ORDER BY id ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	defer rows.Close()

	banks := []*Bank{}
	for rows.Next() {
		bank := &Bank{}
		if err := rows.Scan(&bank.ID, &bank.Name); err != nil {
			return nil, fmt.Errorf("failed to scan bank row: %w", err)
		}
		banks = append(banks, bank)
	}
	return banks, rows.Err()
}

// CountBanks returns the number of banks matching the filter.
func (db *DB) CountBanks(f BankFilter) (int, error) {
	where, args := f.where()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM banks"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count banks: %w", err)
	}
	return count, nil
}
