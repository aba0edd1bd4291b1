package service

import (
	"context"
	"fmt"

	"tally/internal/common"
	"tally/internal/model"
)

// Period selects a timeseries bucket size.
type Period string

const (
	// PeriodDay buckets by calendar day.
	PeriodDay Period = "day"
	// PeriodMonth buckets by calendar month.
	PeriodMonth Period = "month"
	// PeriodYear buckets by calendar year.
	PeriodYear Period = "year"
)

// StatisticsService computes aggregates over the full record set.
type StatisticsService struct {
	source RecordSource
}

// NewStatisticsService creates a statistics service over the given source.
func NewStatisticsService(source RecordSource) *StatisticsService {
	return &StatisticsService{source: source}
}

// TotalByType sums amounts grouped by record kind. Both canonical kinds
// are always present in the result, defaulting to zero.
func (s *StatisticsService) TotalByType(ctx context.Context) (map[model.Kind]float64, error) {
	records, err := allRecords(ctx, s.source)
	if err != nil {
		return nil, err
	}

	totals := map[model.Kind]float64{
		model.KindIncome:      0,
		model.KindExpenditure: 0,
	}
	for _, rec := range records {
		totals[rec.Kind] += rec.Amount
	}
	return totals, nil
}

// ByCategory sums amounts grouped by category reference. Uncategorized
// records land in the empty-string bucket.
func (s *StatisticsService) ByCategory(ctx context.Context) (map[string]float64, error) {
	records, err := allRecords(ctx, s.source)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, rec := range records {
		key := ""
		if rec.CategoryID != nil {
			key = *rec.CategoryID
		}
		totals[key] += rec.Amount
	}
	return totals, nil
}

// Timeseries sums amounts bucketed by calendar day, month or year. Buckets
// are derived by truncating the recorded ISO date string, so boundaries
// fall at UTC midnight of the string as stored, never of any local
// timezone.
func (s *StatisticsService) Timeseries(ctx context.Context, period Period) (map[string]float64, error) {
	var width int
	switch period {
	case PeriodDay:
		width = 10
	case PeriodMonth:
		width = 7
	case PeriodYear:
		width = 4
	default:
		return nil, fmt.Errorf("%w: unknown period %q", common.ErrValidation, period)
	}

	records, err := allRecords(ctx, s.source)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, rec := range records {
		key := rec.Date
		if len(key) > width {
			key = key[:width]
		}
		totals[key] += rec.Amount
	}
	return totals, nil
}
