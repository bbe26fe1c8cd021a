// Package ingest transforms the raw branch CSV into deduplicated bank and
// branch rows. The whole load commits in a single transaction so readers
// never observe a half-loaded dataset.
package ingest

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ifscdir/ifscdir/internal/database"
)

// DefaultBatchSize is the number of rows per insert batch. Each batch runs
// under its own savepoint: a failed batch is skipped whole and the load
// continues.
const DefaultBatchSize = 1000

// IFSCLength is the fixed length of an IFSC code; rows with a different
// length are counted malformed.
const IFSCLength = 11

var requiredColumns = []string{"ifsc", "bank_id", "branch", "address", "city", "district", "state", "bank_name"}

// Options control a load run.
type Options struct {
	// Replace truncates the store before inserting, inside the same
	// transaction. When false and the store already holds data, the load is
	// skipped entirely.
	Replace bool
}

// Report summarizes a load run.
type Report struct {
	BanksLoaded       int  `json:"banks_loaded"`
	BranchesLoaded    int  `json:"branches_loaded"`
	DuplicatesRemoved int  `json:"duplicates_removed"`
	MalformedSkipped  int  `json:"malformed_skipped"`
	SkippedExisting   bool `json:"skipped_existing"`
}

// Loader bulk-loads a CSV snapshot into the store.
type Loader struct {
	db        *database.DB
	batchSize int
}

// New creates a loader with the default batch size.
func New(db *database.DB) *Loader {
	return &Loader{db: db, batchSize: DefaultBatchSize}
}

// Load reads the CSV at path and populates the store, returning a report of
// what happened. A missing source file is fatal; malformed rows are counted
// and skipped.
func (l *Loader) Load(path string, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("source file not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	if !opts.Replace {
		empty, err := l.db.IsEmpty()
		if err != nil {
			return nil, err
		}
		if !empty {
			log.Info().Str("path", path).Msg("Store already populated, skipping load (use replace to reload)")
			return &Report{SkippedExisting: true}, nil
		}
	}

	report := &Report{}
	banks, branches, err := l.parse(f, report)
	if err != nil {
		return nil, err
	}

	if err := l.db.Transaction(func(tx *sql.Tx) error {
		if opts.Replace {
			if err := database.Truncate(tx); err != nil {
				return err
			}
		}
		report.BanksLoaded = l.insertBatched(tx, len(banks), func(lo, hi int) error {
			return database.InsertBanks(tx, banks[lo:hi])
		}, report)
		report.BranchesLoaded = l.insertBatched(tx, len(branches), func(lo, hi int) error {
			return database.InsertBranches(tx, branches[lo:hi])
		}, report)
		return nil
	}); err != nil {
		return nil, err
	}

	// Refresh planner stats now that the indexes cover real data
	if err := l.db.Optimize(); err != nil {
		log.Warn().Err(err).Msg("Failed to optimize database after load")
	}

	log.Info().
		Int("banks_loaded", report.BanksLoaded).
		Int("branches_loaded", report.BranchesLoaded).
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("malformed_skipped", report.MalformedSkipped).
		Msg("Data load complete")

	return report, nil
}

// parse streams the CSV and returns deduplicated bank and branch rows.
// Duplicate IFSC codes keep the first occurrence; so do duplicate bank ids.
func (l *Loader) parse(f io.Reader, report *Report) ([]*database.Bank, []*database.Branch, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("source file is missing required column %q", name)
		}
	}
	width := len(header)

	seenIFSC := make(map[string]bool)
	bankNames := make(map[int64]string)
	var branches []*database.Branch

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.MalformedSkipped++
				continue
			}
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(record) != width {
			report.MalformedSkipped++
			continue
		}

		field := func(name string) string { return strings.TrimSpace(record[cols[name]]) }

		ifsc := strings.ToUpper(field("ifsc"))
		if len(ifsc) != IFSCLength {
			report.MalformedSkipped++
			continue
		}

		bankID, err := strconv.ParseInt(field("bank_id"), 10, 64)
		if err != nil {
			report.MalformedSkipped++
			continue
		}

		if seenIFSC[ifsc] {
			report.DuplicatesRemoved++
			continue
		}
		seenIFSC[ifsc] = true

		if _, ok := bankNames[bankID]; !ok {
			bankNames[bankID] = field("bank_name")
		}

		branches = append(branches, &database.Branch{
			IFSC:       ifsc,
			BankID:     bankID,
			BranchName: field("branch"),
			Address:    field("address"),
			City:       field("city"),
			District:   field("district"),
			State:      field("state"),
		})
	}

	banks := make([]*database.Bank, 0, len(bankNames))
	for id, name := range bankNames {
		banks = append(banks, &database.Bank{ID: id, Name: name})
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].ID < banks[j].ID })

	if report.DuplicatesRemoved > 0 {
		log.Debug().Int("count", report.DuplicatesRemoved).Msg("Removed duplicate IFSC codes")
	}

	return banks, branches, nil
}

// insertBatched inserts n rows in batchSize slices, each under a savepoint.
// A failed batch rolls back to its savepoint, counts as fully skipped, and
// the remaining batches continue. Returns the number of rows inserted.
func (l *Loader) insertBatched(tx *sql.Tx, n int, insert func(lo, hi int) error, report *Report) int {
	inserted := 0
	for lo := 0; lo < n; lo += l.batchSize {
		hi := min(lo+l.batchSize, n)

		name := fmt.Sprintf("batch_%d", lo)
		if _, err := tx.Exec("SAVEPOINT " + name); err != nil {
			log.Error().Err(err).Msg("Failed to create savepoint, skipping batch")
			report.MalformedSkipped += hi - lo
			continue
		}

		if err := insert(lo, hi); err != nil {
			log.Error().Err(err).Int("rows", hi-lo).Msg("Batch insert failed, skipping batch")
			if _, rbErr := tx.Exec("ROLLBACK TO " + name); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback to savepoint")
			}
			report.MalformedSkipped += hi - lo
		} else {
			inserted += hi - lo
		}

		if _, err := tx.Exec("RELEASE " + name); err != nil {
			log.Error().Err(err).Msg("Failed to release savepoint")
		}
	}
	return inserted
}
