// Package directory is the query layer over the loaded bank/branch dataset.
// It validates caller input, applies the pagination envelope, and keeps
// storage details behind the database package.
package directory

import (
	"strings"

	"github.com/ifscdir/ifscdir/internal/database"
)

const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 50

	// IFSCLength is the fixed length of an Indian Financial System Code.
	IFSCLength = 11
)

// Service serves filtered, paginated read views over banks and branches.
type Service struct {
	db *database.DB
}

// New creates a query service over the given store.
func New(db *database.DB) *Service {
	return &Service{db: db}
}

// Pagination is the metadata carried by every list result.
type Pagination struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// BankPage is a page of banks with pagination metadata.
type BankPage struct {
	Pagination
	Items []*database.Bank `json:"data"`
}

// BranchPage is a page of branches (with bank details) and pagination metadata.
type BranchPage struct {
	Pagination
	Items []*database.BranchDetail `json:"data"`
}

// Stats summarizes the loaded dataset.
type Stats struct {
	TotalBanks    int `json:"total_banks"`
	TotalBranches int `json:"total_branches"`
}

// BranchFilters are the caller-facing branch list filters, ANDed together.
// Each is a case-insensitive exact match on the normalized field.
type BranchFilters struct {
	BankName string
	City     string
	District string
	State    string
}

// ListBanks returns a page of banks. search is a case-insensitive substring
// match on the bank name. Results are ordered by id ascending.
func (s *Service) ListBanks(page, pageSize int, search string) (*BankPage, error) {
	if err := validatePaging(page, pageSize); err != nil {
		return nil, err
	}

	filter := database.BankFilter{Search: search}
	total, err := s.db.CountBanks(filter)
	if err != nil {
		return nil, err
	}
	items, err := s.db.ListBanks(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &BankPage{
		Pagination: Pagination{Total: total, Page: page, PageSize: pageSize},
		Items:      items,
	}, nil
}

// GetBank returns a bank by id, or (nil, nil) when it does not exist.
func (s *Service) GetBank(id int64) (*database.Bank, error) {
	return s.db.GetBank(id)
}

// ListBranchesOfBank returns a page of a bank's branches, optionally filtered
// by city and state. Returns (nil, nil) when the bank does not exist.
func (s *Service) ListBranchesOfBank(bankID int64, page, pageSize int, city, state string) (*BranchPage, error) {
	if err := validatePaging(page, pageSize); err != nil {
		return nil, err
	}

	bank, err := s.db.GetBank(bankID)
	if err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, nil
	}

	return s.listBranches(database.BranchFilter{BankID: bankID, HasBankID: true, City: city, State: state}, page, pageSize)
}

// ListBranches returns a page of branches matching the given filters.
// search is a case-insensitive substring match across branch name, address
// and IFSC. Results are ordered by IFSC ascending.
func (s *Service) ListBranches(page, pageSize int, filters BranchFilters, search string) (*BranchPage, error) {
	if err := validatePaging(page, pageSize); err != nil {
		return nil, err
	}

	return s.listBranches(database.BranchFilter{
		BankName: filters.BankName,
		City:     filters.City,
		District: filters.District,
		State:    filters.State,
		Search:   search,
	}, page, pageSize)
}

func (s *Service) listBranches(filter database.BranchFilter, page, pageSize int) (*BranchPage, error) {
	total, err := s.db.CountBranches(filter)
	if err != nil {
		return nil, err
	}
	items, err := s.db.ListBranches(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &BranchPage{
		Pagination: Pagination{Total: total, Page: page, PageSize: pageSize},
		Items:      items,
	}, nil
}

// GetBranchByIFSC returns a branch with bank details by IFSC code, or
// (nil, nil) when it does not exist. The code is validated for length and
// uppercased before the lookup ever reaches storage.
func (s *Service) GetBranchByIFSC(ifsc string) (*database.BranchDetail, error) {
	if len(ifsc) != IFSCLength {
		return nil, InvalidArgumentError{Field: "ifsc", Message: "IFSC code must be exactly 11 characters"}
	}
	return s.db.GetBranch(strings.ToUpper(ifsc))
}

// Stats returns the total bank and branch counts.
func (s *Service) Stats() (*Stats, error) {
	banks, branches, err := s.db.Counts()
	if err != nil {
		return nil, err
	}
	return &Stats{TotalBanks: banks, TotalBranches: branches}, nil
}
