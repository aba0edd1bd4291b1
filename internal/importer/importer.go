// Package importer ingests external transaction files into the ledger with
// strict duplicate detection against existing store contents.
package importer

import (
	"context"
	"math"
	"strings"

	"tally/internal/model"
	"tally/internal/storage"

	"github.com/google/uuid"
)

// DefaultAmountTolerance is the absolute tolerance used when comparing
// amounts during duplicate detection.
const DefaultAmountTolerance = 0.01

// existingPageSize is how many records are loaded per round trip when
// snapshotting the store before an import run.
const existingPageSize = 1000

// RowError describes one rejected input row. The raw payload is carried
// along so the caller can show or re-process the row.
type RowError struct {
	Data   map[string]string
	Reason string
	Row    int
}

// Report summarizes an import run. Skipped counts strict duplicates;
// Errors holds rows that failed parsing or validation. Neither aborts
// the run.
type Report struct {
	Errors   []RowError
	Imported int
	Skipped  int
}

// Importer saves candidate records through the store's save path, skipping
// strict duplicates. A strict duplicate matches an already-known record on
// exact date string, amount within the tolerance, category reference,
// remark and kind.
type Importer struct {
	store     *storage.Store
	tolerance float64
}

// New creates an importer over the given store. A non-positive tolerance
// falls back to DefaultAmountTolerance.
func New(store *storage.Store, tolerance float64) *Importer {
	if tolerance <= 0 {
		tolerance = DefaultAmountTolerance
	}
	return &Importer{store: store, tolerance: tolerance}
}

// snapshotExisting loads every record currently in the store. Imported
// rows are appended to the snapshot as the run progresses so duplicates
// within one run are caught too.
func (im *Importer) snapshotExisting(ctx context.Context) ([]model.Record, error) {
	var all []model.Record
	for offset := 0; ; offset += existingPageSize {
		page, err := im.store.QueryRecords(ctx, storage.QueryOptions{Limit: existingPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < existingPageSize {
			return all, nil
		}
	}
}

// isStrictDuplicate reports whether candidate matches existing on all five
// identity fields.
func (im *Importer) isStrictDuplicate(candidate, existing *model.Record) bool {
	if candidate.Date == "" || existing.Date == "" || candidate.Date != existing.Date {
		return false
	}
	if math.Abs(candidate.Amount-existing.Amount) > im.tolerance {
		return false
	}
	if derefOrEmpty(candidate.CategoryID) != derefOrEmpty(existing.CategoryID) {
		return false
	}
	if derefOrEmpty(candidate.Remark) != derefOrEmpty(existing.Remark) {
		return false
	}
	return candidate.Kind == existing.Kind
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// newRecordID generates a fresh record identifier.
func newRecordID() string {
	return "rec_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
