// Package model defines the ledger's value types and their validation rules.
package model

import (
	"fmt"
	"math"

	"tally/internal/common"
)

// Record represents a single income or expenditure entry in the ledger.
//
// Date and CreatedAt are ISO-8601 strings. Lexical comparison of Date values
// is only meaningful when all records share the same precision and timezone
// convention; the query layer relies on that and does not enforce it.
// A nil CategoryID means the record is uncategorized, which is a valid state,
// not a broken reference.
type Record struct {
	CategoryID *string
	Remark     *string
	ID         string
	Kind       Kind
	Date       string
	CreatedAt  string
	Amount     float64
}

// ValidateRecord checks a record before it may be persisted. It rejects
// unknown kinds, non-positive or non-finite amounts, and empty dates.
// Date format is deliberately not checked here; the import layer parses
// dates before records reach validation.
func ValidateRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", common.ErrValidation)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: kind must be INCOME or EXPENDITURE, got %q", common.ErrValidation, r.Kind)
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return fmt.Errorf("%w: amount must be finite", common.ErrValidation)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", common.ErrValidation)
	}
	if r.Date == "" {
		return fmt.Errorf("%w: date must not be empty", common.ErrValidation)
	}
	return nil
}
