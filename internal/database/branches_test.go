package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	err := db.Transaction(func(tx *sql.Tx) error {
		if err := InsertBanks(tx, []*Bank{
			{ID: 1, Name: "STATE BANK OF INDIA"},
			{ID: 2, Name: "HDFC BANK"},
		}); err != nil {
			return err
		}
		return InsertBranches(tx, []*Branch{
			{IFSC: "SBIN0000001", BankID: 1, BranchName: "FORT", Address: "MUMBAI SAMACHAR MARG", City: "MUMBAI", District: "GREATER MUMBAI", State: "MAHARASHTRA"},
			{IFSC: "SBIN0000002", BankID: 1, BranchName: "CONNAUGHT PLACE", Address: "NEW DELHI", City: "NEW DELHI", District: "NEW DELHI", State: "DELHI"},
			{IFSC: "HDFC0000001", BankID: 2, BranchName: "KHAR WEST", Address: "KHAR", City: "MUMBAI", District: "GREATER MUMBAI", State: "MAHARASHTRA"},
		})
	})
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
}

func TestGetBranch_JoinsBankDetails(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	branch, err := db.GetBranch("SBIN0000001")
	if err != nil {
		t.Fatalf("GetBranch returned error: %v", err)
	}
	if branch == nil {
		t.Fatal("expected branch to exist")
	}
	if branch.Bank.ID != 1 || branch.Bank.Name != "STATE BANK OF INDIA" {
		t.Errorf("expected joined bank details, got %+v", branch.Bank)
	}
}

func TestGetBranch_AbsentReturnsNil(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	branch, err := db.GetBranch("XXXX0000000")
	if err != nil {
		t.Fatalf("GetBranch returned error: %v", err)
	}
	if branch != nil {
		t.Errorf("expected nil for absent ifsc, got %+v", branch)
	}
}

func TestListBranches_FiltersAreANDed(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	branches, err := db.ListBranches(BranchFilter{City: "MUMBAI", BankName: "hdfc bank"}, 50, 0)
	if err != nil {
		t.Fatalf("ListBranches returned error: %v", err)
	}
	if len(branches) != 1 || branches[0].IFSC != "HDFC0000001" {
		t.Errorf("expected only the HDFC Mumbai branch, got %d rows", len(branches))
	}
}

func TestListBranches_SearchMatchesAddressSubstring(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	branches, err := db.ListBranches(BranchFilter{Search: "samachar"}, 50, 0)
	if err != nil {
		t.Fatalf("ListBranches returned error: %v", err)
	}
	if len(branches) != 1 || branches[0].IFSC != "SBIN0000001" {
		t.Errorf("expected the Fort branch by address substring, got %d rows", len(branches))
	}
}

func TestListBranches_OrderedByIFSC(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	branches, err := db.ListBranches(BranchFilter{}, 50, 0)
	if err != nil {
		t.Fatalf("ListBranches returned error: %v", err)
	}
	if len(branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(branches))
	}
	for i := 1; i < len(branches); i++ {
		if branches[i-1].IFSC >= branches[i].IFSC {
			t.Errorf("expected ascending IFSC order, got %s before %s", branches[i-1].IFSC, branches[i].IFSC)
		}
	}
}

func TestInsertBranches_EmptyFieldsStoredAsNull(t *testing.T) {
	db := newTestDB(t)
	err := db.Transaction(func(tx *sql.Tx) error {
		if err := InsertBanks(tx, []*Bank{{ID: 1, Name: "STATE BANK OF INDIA"}}); err != nil {
			return err
		}
		return InsertBranches(tx, []*Branch{{IFSC: "SBIN0000009", BankID: 1}})
	})
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	var nulls int
	err = db.QueryRow(`SELECT COUNT(*) FROM branches WHERE ifsc = 'SBIN0000009'
		AND branch IS NULL AND address IS NULL AND city IS NULL AND district IS NULL AND state IS NULL`).Scan(&nulls)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if nulls != 1 {
		t.Error("expected empty descriptive fields to be stored as NULL")
	}

	branch, err := db.GetBranch("SBIN0000009")
	if err != nil {
		t.Fatalf("GetBranch returned error: %v", err)
	}
	if branch.City != "" || branch.Address != "" {
		t.Errorf("expected NULL fields to scan as empty strings, got %+v", branch)
	}
}
