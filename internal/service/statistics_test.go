package service

import (
	"context"
	"fmt"
	"testing"

	"tally/internal/common"
	"tally/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorizedRecord(id string, kind model.Kind, amount float64, date, categoryID string) model.Record {
	rec := model.Record{ID: id, Kind: kind, Amount: amount, Date: date}
	if categoryID != "" {
		rec.CategoryID = &categoryID
	}
	return rec
}

func TestTotalByType(t *testing.T) {
	src := &fakeSource{records: []model.Record{
		categorizedRecord("rec_1", model.KindExpenditure, 50, "2025-10-01T10:00:00", "cat_food"),
		categorizedRecord("rec_2", model.KindExpenditure, 30, "2025-10-02T10:00:00", "cat_food"),
		categorizedRecord("rec_3", model.KindIncome, 1000, "2025-10-03T10:00:00", "cat_salary"),
	}}

	totals, err := NewStatisticsService(src).TotalByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80.0, totals[model.KindExpenditure])
	assert.Equal(t, 1000.0, totals[model.KindIncome])
}

func TestTotalByTypeEmptySet(t *testing.T) {
	totals, err := NewStatisticsService(&fakeSource{}).TotalByType(context.Background())
	require.NoError(t, err)

	// Both canonical kinds are present even with no records.
	require.Len(t, totals, 2)
	assert.Equal(t, 0.0, totals[model.KindIncome])
	assert.Equal(t, 0.0, totals[model.KindExpenditure])
}

func TestByCategory(t *testing.T) {
	src := &fakeSource{records: []model.Record{
		categorizedRecord("rec_1", model.KindExpenditure, 50, "2025-10-01T10:00:00", "cat_food"),
		categorizedRecord("rec_2", model.KindExpenditure, 30, "2025-10-02T10:00:00", "cat_food"),
	}}

	totals, err := NewStatisticsService(src).ByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"cat_food": 80.0}, totals)
}

func TestByCategoryUncategorizedBucket(t *testing.T) {
	src := &fakeSource{records: []model.Record{
		categorizedRecord("rec_1", model.KindExpenditure, 50, "2025-10-01T10:00:00", "cat_food"),
		categorizedRecord("rec_2", model.KindExpenditure, 7, "2025-10-02T10:00:00", ""),
	}}

	totals, err := NewStatisticsService(src).ByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, totals["cat_food"])
	assert.Equal(t, 7.0, totals[""], "uncategorized records aggregate under the empty key")
}

func TestTimeseries(t *testing.T) {
	src := &fakeSource{records: []model.Record{
		categorizedRecord("rec_1", model.KindExpenditure, 50, "2025-10-01T10:00:00", "cat_food"),
		categorizedRecord("rec_2", model.KindExpenditure, 30, "2025-10-02T10:00:00", "cat_food"),
		categorizedRecord("rec_3", model.KindIncome, 5, "2024-03-01T08:00:00", ""),
	}}
	stats := NewStatisticsService(src)
	ctx := context.Background()

	day, err := stats.Timeseries(ctx, PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"2025-10-01": 50.0,
		"2025-10-02": 30.0,
		"2024-03-01": 5.0,
	}, day)

	month, err := stats.Timeseries(ctx, PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"2025-10": 80.0,
		"2024-03": 5.0,
	}, month)

	year, err := stats.Timeseries(ctx, PeriodYear)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"2025": 80.0,
		"2024": 5.0,
	}, year)
}

func TestTimeseriesUnknownPeriod(t *testing.T) {
	_, err := NewStatisticsService(&fakeSource{}).Timeseries(context.Background(), Period("week"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAllRecordsPagesThroughSource(t *testing.T) {
	var records []model.Record
	for i := 0; i < pageSize+25; i++ {
		records = append(records, categorizedRecord(
			fmt.Sprintf("rec_%04d", i), model.KindExpenditure, 1, "2025-10-01", ""))
	}
	src := &fakeSource{records: records}

	totals, err := NewStatisticsService(src).TotalByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(pageSize+25), totals[model.KindExpenditure])
}
