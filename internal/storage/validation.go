// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"fmt"
	"strings"

	"tally/internal/common"
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", common.ErrValidation)
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", common.ErrValidation, paramName)
	}
	return nil
}

// orderColumns is the allow-list for ORDER BY targets. Anything outside it
// is rejected before SQL is built, so caller input never reaches the
// statement text.
var orderColumns = map[string]struct{}{
	"id":         {},
	"type":       {},
	"amount":     {},
	"date":       {},
	"created_at": {},
}

// validateOrderClause checks a "column [ASC|DESC]" clause against the
// allow-list and returns its normalized form.
func validateOrderClause(clause string) (string, error) {
	fields := strings.Fields(clause)
	if len(fields) == 0 || len(fields) > 2 {
		return "", fmt.Errorf("%w: invalid order clause %q", common.ErrValidation, clause)
	}

	column := strings.ToLower(fields[0])
	if _, ok := orderColumns[column]; !ok {
		return "", fmt.Errorf("%w: unsortable column %q", common.ErrValidation, fields[0])
	}

	direction := "ASC"
	if len(fields) == 2 {
		switch strings.ToUpper(fields[1]) {
		case "ASC":
			direction = "ASC"
		case "DESC":
			direction = "DESC"
		default:
			return "", fmt.Errorf("%w: invalid sort direction %q", common.ErrValidation, fields[1])
		}
	}

	return column + " " + direction, nil
}
