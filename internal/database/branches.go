package database

import (
	"database/sql"
	"fmt"
)

// Branch represents a branch row. The descriptive fields are nullable in the
// source data and map to empty strings.
type Branch struct {
	IFSC       string `json:"ifsc"`
	BankID     int64  `json:"bank_id"`
	BranchName string `json:"branch,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	District   string `json:"district,omitempty"`
	State      string `json:"state,omitempty"`
}

// BranchDetail is a branch composed with its bank, produced by an explicit
// join rather than lazy relationship traversal.
type BranchDetail struct {
	Branch
	Bank Bank `json:"bank"`
}

// BranchFilter narrows branch queries. BankName, City, District and State
// are case-insensitive exact matches on the normalized field; Search is a
// case-insensitive substring match across branch name, address and IFSC.
// All set filters are ANDed together. BankID only applies when HasBankID is
// set, since 0 is a valid bank id.
type BranchFilter struct {
	BankID    int64
	HasBankID bool
	BankName  string
	City      string
	District  string
	State     string
	Search    string
}

func (f BranchFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.HasBankID {
		conds = append(conds, "b.bank_id = ?")
		args = append(args, f.BankID)
	}
	if f.BankName != "" {
		conds = append(conds, "lower(k.name) = lower(?)")
		args = append(args, f.BankName)
	}
	if f.City != "" {
		conds = append(conds, "lower(b.city) = lower(?)")
		args = append(args, f.City)
	}
	if f.District != "" {
		conds = append(conds, "lower(b.district) = lower(?)")
		args = append(args, f.District)
	}
	if f.State != "" {
		conds = append(conds, "lower(b.state) = lower(?)")
		args = append(args, f.State)
	}
	if f.Search != "" {
		conds = append(conds, "(instr(lower(b.branch), lower(?)) > 0 OR instr(lower(b.address), lower(?)) > 0 OR instr(lower(b.ifsc), lower(?)) > 0)")
		args = append(args, f.Search, f.Search, f.Search)
	}

	if len(conds) == 0 {
		return "", nil
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

const branchSelect = `
	SELECT b.ifsc, b.bank_id, b.branch, b.address, b.city, b.district, b.state, k.id, k.name
	FROM branches b
	JOIN banks k ON k.id = b.bank_id`

// GetBranch retrieves a branch by IFSC code with its bank joined in.
// Returns (nil, nil) when absent.
func (db *DB) GetBranch(ifsc string) (*BranchDetail, error) {
	row := db.QueryRow(branchSelect+" WHERE b.ifsc = ?", ifsc)
	detail, err := scanBranchDetail(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return detail, nil
}

// ListBranches returns branches matching the filter with bank details,
// ordered by IFSC ascending for stable pagination.
func (db *DB) ListBranches(f BranchFilter, limit, offset int) ([]*BranchDetail, error) {
	where, args := f.where()
	args = append(args, limit, offset)

	rows, err := db.Query(branchSelect+where+" ORDER BY b.ifsc ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	branches := []*BranchDetail{}
	for rows.Next() {
		detail, err := scanBranchDetail(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch row: %w", err)
		}
		branches = append(branches, detail)
	}
	return branches, rows.Err()
}

// CountBranches returns the number of branches matching the filter.
func (db *DB) CountBranches(f BranchFilter) (int, error) {
	where, args := f.where()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM branches b JOIN banks k ON k.id = b.bank_id"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count branches: %w", err)
	}
	return count, nil
}

// Counts returns the total number of banks and branches in the store.
func (db *DB) Counts() (banks int, branches int, err error) {
	if err = db.QueryRow("SELECT COUNT(*) FROM banks").Scan(&banks); err != nil {
		return 0, 0, fmt.Errorf("failed to count banks: %w", err)
	}
	if err = db.QueryRow("SELECT COUNT(*) FROM branches").Scan(&branches); err != nil {
		return 0, 0, fmt.Errorf("failed to count branches: %w", err)
	}
	return banks, branches, nil
}

func scanBranchDetail(scan func(...any) error) (*BranchDetail, error) {
	detail := &BranchDetail{}
	var branchName, address, city, district, state sql.NullString

	if err := scan(&detail.IFSC, &detail.BankID, &branchName, &address, &city, &district, &state,
		&detail.Bank.ID, &detail.Bank.Name); err != nil {
		return nil, err
	}

	detail.BranchName = nullStringValue(branchName)
	detail.Address = nullStringValue(address)
	detail.City = nullStringValue(city)
	detail.District = nullStringValue(district)
	detail.State = nullStringValue(state)

	return detail, nil
}
