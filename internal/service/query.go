package service

import (
	"context"
	"sort"

	"tally/internal/model"
	"tally/internal/storage"
)

// QueryService answers filtered record queries. It holds no state of its
// own; every call reads through the underlying source.
type QueryService struct {
	source RecordSource
}

// NewQueryService creates a query service over the given source.
func NewQueryService(source RecordSource) *QueryService {
	return &QueryService{source: source}
}

// ByDateRange returns records with dates in [start, end], both bounds
// inclusive.
func (q *QueryService) ByDateRange(ctx context.Context, start, end string) ([]model.Record, error) {
	return q.source.QueryRecords(ctx, storage.QueryOptions{Start: start, End: end})
}

// ByCategory returns records referencing the given category.
func (q *QueryService) ByCategory(ctx context.Context, categoryID string) ([]model.Record, error) {
	return q.source.QueryRecords(ctx, storage.QueryOptions{CategoryID: categoryID})
}

// SortRecords returns a copy of records stably sorted by their date
// string. Lexical comparison orders ISO-8601 dates correctly as long as
// all records share the same precision and timezone convention.
func (q *QueryService) SortRecords(records []model.Record, descending bool) []model.Record {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}
