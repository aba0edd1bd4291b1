package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tally/internal/common"
	"tally/internal/model"
)

// defaultQueryLimit is the page size used when QueryOptions.Limit is zero.
const defaultQueryLimit = 100

// QueryOptions describes a filtered, ordered, paginated record query.
// Empty Start, End and CategoryID mean "filter not applied"; supplied
// filters combine conjunctively and date bounds are inclusive. OrderBy is
// a "column [ASC|DESC]" clause checked against the sortable-column
// allow-list; empty means "date DESC". Limit of zero selects the default
// page size; negative Limit or Offset is a validation error.
type QueryOptions struct {
	Start      string
	End        string
	CategoryID string
	OrderBy    string
	Limit      int
	Offset     int
}

// SaveRecord validates and inserts a record. Validation failures are
// reported before any statement is issued; a duplicate id surfaces as
// ErrDuplicate. If CreatedAt is unset it is assigned the current UTC time
// and written back to rec.
func (s *Store) SaveRecord(ctx context.Context, rec *model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := model.ValidateRecord(rec); err != nil {
		return err
	}
	if err := validateString(rec.ID, "record id"); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO records (id, type, amount, date, category_id, remark, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Amount, rec.Date, rec.CategoryID, rec.Remark, rec.CreatedAt)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: record %s already exists", common.ErrDuplicate, rec.ID)
		}
		return fmt.Errorf("%w: failed to insert record: %v", common.ErrDatabase, err)
	}

	slog.Debug("saved record", "id", rec.ID, "kind", rec.Kind, "amount", rec.Amount)
	return nil
}

// UpdateRecord validates rec and replaces the stored row by id. The
// returned bool reports whether a row matched; false with a nil error
// means there was nothing to update, which callers may treat as success
// or as a miss depending on their needs.
func (s *Store) UpdateRecord(ctx context.Context, rec *model.Record) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := model.ValidateRecord(rec); err != nil {
		return false, err
	}
	if err := validateString(rec.ID, "record id"); err != nil {
		return false, err
	}
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE records
		SET type = ?, amount = ?, date = ?, category_id = ?, remark = ?
		WHERE id = ?`,
		string(rec.Kind), rec.Amount, rec.Date, rec.CategoryID, rec.Remark, rec.ID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to update record: %v", common.ErrDatabase, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to read affected rows: %v", common.ErrDatabase, err)
	}
	return affected > 0, nil
}

// DeleteRecord removes a record by id. Deleting an absent record is a
// no-op, not an error.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete record: %v", common.ErrDatabase, err)
	}
	return nil
}

// QueryRecords returns records matching opts, ordered and paginated. All
// filter values are bound as parameters; the order clause is rebuilt from
// the allow-list so no caller text is ever interpolated into SQL.
func (s *Store) QueryRecords(ctx context.Context, opts QueryOptions) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", common.ErrValidation, opts.Limit)
	}
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative, got %d", common.ErrValidation, opts.Offset)
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	orderClause := opts.OrderBy
	if orderClause == "" {
		orderClause = "date DESC"
	}
	orderClause, err = validateOrderClause(orderClause)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = defaultQueryLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, type, amount, date, category_id, remark, created_at FROM records WHERE 1=1`)
	params := make([]any, 0, 5)

	if opts.Start != "" {
		sb.WriteString(` AND date >= ?`)
		params = append(params, opts.Start)
	}
	if opts.End != "" {
		sb.WriteString(` AND date <= ?`)
		params = append(params, opts.End)
	}
	if opts.CategoryID != "" {
		sb.WriteString(` AND category_id = ?`)
		params = append(params, opts.CategoryID)
	}

	sb.WriteString(` ORDER BY ` + orderClause + ` LIMIT ? OFFSET ?`)
	params = append(params, limit, opts.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query records: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating records: %v", common.ErrDatabase, err)
	}

	slog.Debug("queried records", "count", len(records))
	return records, nil
}

func scanRecord(rows *sql.Rows) (model.Record, error) {
	var (
		rec        model.Record
		categoryID sql.NullString
		remark     sql.NullString
	)
	if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Amount, &rec.Date, &categoryID, &remark, &rec.CreatedAt); err != nil {
		return model.Record{}, fmt.Errorf("%w: failed to scan record: %v", common.ErrDatabase, err)
	}
	if categoryID.Valid {
		rec.CategoryID = &categoryID.String
	}
	if remark.Valid {
		rec.Remark = &remark.String
	}
	return rec, nil
}
