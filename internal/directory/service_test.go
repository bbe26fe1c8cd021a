package directory_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifscdir/ifscdir/internal/database"
	"github.com/ifscdir/ifscdir/internal/directory"
)

func newTestService(t *testing.T) *directory.Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	err = db.Transaction(func(tx *sql.Tx) error {
		if err := database.InsertBanks(tx, []*database.Bank{
			{ID: 1, Name: "STATE BANK OF INDIA"},
			{ID: 2, Name: "HDFC BANK"},
		}); err != nil {
			return err
		}
		return database.InsertBranches(tx, []*database.Branch{
			{IFSC: "SBIN0000001", BankID: 1, BranchName: "FORT", Address: "MUMBAI SAMACHAR MARG", City: "MUMBAI", District: "GREATER MUMBAI", State: "MAHARASHTRA"},
			{IFSC: "SBIN0000002", BankID: 1, BranchName: "CONNAUGHT PLACE", Address: "NEW DELHI", City: "NEW DELHI", District: "NEW DELHI", State: "DELHI"},
			{IFSC: "SBIN0000003", BankID: 1, BranchName: "ANDHERI", Address: "ANDHERI EAST", City: "MUMBAI", District: "GREATER MUMBAI", State: "MAHARASHTRA"},
			{IFSC: "HDFC0000001", BankID: 2, BranchName: "KHAR WEST", Address: "KHAR", City: "MUMBAI", District: "GREATER MUMBAI", State: "MAHARASHTRA"},
			{IFSC: "HDFC0000002", BankID: 2, BranchName: "CHENNAI MAIN", Address: "ANNA SALAI", City: "CHENNAI", District: "CHENNAI", State: "TAMIL NADU"},
		})
	})
	require.NoError(t, err)

	return directory.New(db)
}

func TestListBanks_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := newTestService(t)

	page, err := svc.ListBanks(1, 50, "STATE BANK")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "STATE BANK OF INDIA", page.Items[0].Name)
	assert.Equal(t, 1, page.Total)

	lower, err := svc.ListBanks(1, 50, "state bank")
	require.NoError(t, err)
	assert.Equal(t, page.Items, lower.Items)
}

func TestListBanks_RejectsOutOfRangePaging(t *testing.T) {
	svc := newTestService(t)

	for _, tc := range []struct {
		name     string
		page     int
		pageSize int
	}{
		{"zero page", 0, 50},
		{"negative page", -1, 50},
		{"zero page size", 1, 0},
		{"oversized page size", 1, 101},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ListBanks(tc.page, tc.pageSize, "")
			var invalid directory.InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestListBranches_PageSizeBoundsAndTotal(t *testing.T) {
	svc := newTestService(t)

	var collected []string
	for page := 1; ; page++ {
		res, err := svc.ListBranches(page, 2, directory.BranchFilters{}, "")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Items), 2)
		assert.Equal(t, 5, res.Total)
		if len(res.Items) == 0 {
			break
		}
		for _, b := range res.Items {
			collected = append(collected, b.IFSC)
		}
	}
	assert.Len(t, collected, 5, "items across all pages must equal the filtered row count")
}

func TestListBranches_CityFilterIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	upper, err := svc.ListBranches(1, 50, directory.BranchFilters{City: "MUMBAI"}, "")
	require.NoError(t, err)
	lower, err := svc.ListBranches(1, 50, directory.BranchFilters{City: "mumbai"}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, upper.Total)
	assert.Equal(t, upper.Items, lower.Items)
}

func TestListBranches_CityFilterIsExactMatch(t *testing.T) {
	svc := newTestService(t)

	// "MUMBAI" must not match "NEW MUMBAI"-style supersets; conversely a
	// substring of a city must not match.
	res, err := svc.ListBranches(1, 50, directory.BranchFilters{City: "MUM"}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestListBranches_FiltersAreANDed(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.ListBranches(1, 50, directory.BranchFilters{City: "MUMBAI", BankName: "HDFC BANK"}, "")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "HDFC0000001", res.Items[0].IFSC)
}

func TestListBranches_SearchSpansNameAddressAndIFSC(t *testing.T) {
	svc := newTestService(t)

	byAddress, err := svc.ListBranches(1, 50, directory.BranchFilters{}, "anna salai")
	require.NoError(t, err)
	require.Len(t, byAddress.Items, 1)
	assert.Equal(t, "HDFC0000002", byAddress.Items[0].IFSC)

	byIFSC, err := svc.ListBranches(1, 50, directory.BranchFilters{}, "sbin")
	require.NoError(t, err)
	assert.Equal(t, 3, byIFSC.Total)
}

func TestGetBranchByIFSC_ValidatesLength(t *testing.T) {
	svc := newTestService(t)

	for _, ifsc := range []string{"", "SBIN1", "SBIN000000199"} {
		_, err := svc.GetBranchByIFSC(ifsc)
		var invalid directory.InvalidArgumentError
		require.ErrorAs(t, err, &invalid, "ifsc %q must be rejected before lookup", ifsc)
	}
}

func TestGetBranchByIFSC_UppercasesBeforeLookup(t *testing.T) {
	svc := newTestService(t)

	branch, err := svc.GetBranchByIFSC("sbin0000001")
	require.NoError(t, err)
	require.NotNil(t, branch)
	assert.Equal(t, "SBIN0000001", branch.IFSC)
	assert.Equal(t, "STATE BANK OF INDIA", branch.Bank.Name)
}

func TestGetBranchByIFSC_AbsentReturnsNil(t *testing.T) {
	svc := newTestService(t)

	branch, err := svc.GetBranchByIFSC("XXXX0000000")
	require.NoError(t, err)
	assert.Nil(t, branch)
}

func TestListBranches_RoundTripByIFSC(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.ListBranches(1, 100, directory.BranchFilters{}, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)

	for _, item := range res.Items {
		resolved, err := svc.GetBranchByIFSC(item.IFSC)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		assert.Equal(t, item, resolved)
	}
}

func TestGetBank_AbsentReturnsNil(t *testing.T) {
	svc := newTestService(t)

	bank, err := svc.GetBank(999)
	require.NoError(t, err)
	assert.Nil(t, bank)
}

func TestListBranchesOfBank(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.ListBranchesOfBank(1, 1, 50, "", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Total)

	filtered, err := svc.ListBranchesOfBank(1, 1, 50, "MUMBAI", "")
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Total)

	missing, err := svc.ListBranchesOfBank(999, 1, 50, "", "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListBranchesOfBank_ZeroIDIsAValidBank(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	err = db.Transaction(func(tx *sql.Tx) error {
		if err := database.InsertBanks(tx, []*database.Bank{
			{ID: 0, Name: "ZERO BANK"},
			{ID: 1, Name: "STATE BANK OF INDIA"},
		}); err != nil {
			return err
		}
		return database.InsertBranches(tx, []*database.Branch{
			{IFSC: "ZERO0000001", BankID: 0, BranchName: "HEAD OFFICE", City: "MUMBAI"},
			{IFSC: "SBIN0000001", BankID: 1, BranchName: "FORT", City: "MUMBAI"},
			{IFSC: "SBIN0000002", BankID: 1, BranchName: "CONNAUGHT PLACE", City: "NEW DELHI"},
		})
	})
	require.NoError(t, err)
	svc := directory.New(db)

	res, err := svc.ListBranchesOfBank(0, 1, 50, "", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Total, "bank 0 must only see its own branches")
	require.Len(t, res.Items, 1)
	assert.Equal(t, "ZERO0000001", res.Items[0].IFSC)
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBanks)
	assert.Equal(t, 5, stats.TotalBranches)
}
