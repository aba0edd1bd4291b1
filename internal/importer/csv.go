package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tally/internal/model"
)

// dateLayouts are tried in order after RFC3339 when parsing input dates.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// normalizedDateLayout is the ISO form every imported date is stored in.
const normalizedDateLayout = "2006-01-02T15:04:05"

// headerAliases maps alternate CSV headers onto canonical field names,
// used when no explicit field map is supplied.
var headerAliases = map[string]string{
	"txn_type": "type",
	"amt":      "amount",
	"datetime": "date",
	"category": "category_id",
	"note":     "remark",
}

// CSVOptions configures a CSV import run.
type CSVOptions struct {
	// FieldMap maps canonical field names (id, type, amount, date,
	// category_id, remark) to the CSV headers that carry them. When nil,
	// headers are matched by name with a few common aliases.
	FieldMap map[string]string
	// Delimiter defaults to a comma.
	Delimiter rune
}

// ImportCSV reads delimited rows from r and saves each valid,
// non-duplicate row as a record. Unparsable and invalid rows are counted
// as errors with a reason tag; strict duplicates are counted as skipped.
// The run never aborts on a bad row.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Report, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	existing, err := im.snapshotExisting(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for rowNum := 1; ; rowNum++ {
		fields, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			report.Errors = append(report.Errors, RowError{
				Row:    rowNum,
				Reason: "unreadable_row",
				Data:   map[string]string{"error": readErr.Error()},
			})
			continue
		}

		raw := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(fields) {
				raw[h] = strings.TrimSpace(fields[i])
			}
		}

		rec, reason := im.buildRecord(raw, opts.FieldMap)
		if reason != "" {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: reason, Data: raw})
			continue
		}

		if im.saveCandidate(ctx, rec, &existing, report, rowNum, raw) {
			report.Imported++
		}
	}

	slog.Info("CSV import finished",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"errors", len(report.Errors))
	return report, nil
}

// buildRecord maps a raw row onto a record, returning a non-empty reason
// tag when the row cannot become a valid record.
func (im *Importer) buildRecord(raw map[string]string, fieldMap map[string]string) (*model.Record, string) {
	get := func(name string) string {
		if header, ok := fieldMap[name]; ok {
			return raw[header]
		}
		if v, ok := raw[name]; ok && v != "" {
			return v
		}
		for alias, canonical := range headerAliases {
			if canonical == name {
				if v, ok := raw[alias]; ok && v != "" {
					return v
				}
			}
		}
		return ""
	}

	date, ok := parseDate(get("date"))
	if !ok {
		return nil, "invalid_date"
	}

	amount, err := strconv.ParseFloat(get("amount"), 64)
	if err != nil {
		return nil, "invalid_amount"
	}

	id := get("id")
	if id == "" {
		id = newRecordID()
	}

	rec := &model.Record{
		ID:     id,
		Kind:   model.Kind(get("type")),
		Amount: amount,
		Date:   date,
	}
	if v := get("category_id"); v != "" {
		rec.CategoryID = &v
	}
	if v := get("remark"); v != "" {
		rec.Remark = &v
	}

	if err := model.ValidateRecord(rec); err != nil {
		return nil, "validation_failed"
	}
	return rec, ""
}

// saveCandidate runs the strict-duplicate check and persists rec. It
// returns true when the record was imported, and records skips and save
// failures on the report itself.
func (im *Importer) saveCandidate(ctx context.Context, rec *model.Record, existing *[]model.Record, report *Report, rowNum int, raw map[string]string) bool {
	for i := range *existing {
		if im.isStrictDuplicate(rec, &(*existing)[i]) {
			report.Skipped++
			return false
		}
	}

	if err := im.store.SaveRecord(ctx, rec); err != nil {
		report.Errors = append(report.Errors, RowError{
			Row:    rowNum,
			Reason: "db_error: " + err.Error(),
			Data:   raw,
		})
		return false
	}

	*existing = append(*existing, *rec)
	return true
}

// parseDate normalizes an input date string to ISO-8601, trying RFC3339
// first and then a list of fallback layouts.
func parseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(normalizedDateLayout), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(normalizedDateLayout), true
		}
	}
	return "", false
}
