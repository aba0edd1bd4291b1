package storage

import (
	"context"
	"testing"

	"tally/internal/common"
	"tally/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAddGetRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cat := model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}
	require.NoError(t, store.AddCategory(ctx, cat))

	got, err := store.GetCategory(ctx, "cat_food")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cat, *got)
}

func TestCategoryGetMissReturnsNil(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	got, err := store.GetCategory(context.Background(), "cat_missing")
	require.NoError(t, err)
	assert.Nil(t, got, "a miss is an absent value, not an error")
}

func TestCategoryAddDuplicate(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cat := model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}
	require.NoError(t, store.AddCategory(ctx, cat))

	err := store.AddCategory(ctx, cat)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicate)
}

func TestCategoryListOrderedByName(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_t", Name: "Transport", Kind: model.KindExpenditure, IsCustom: true}))
	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_f", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}))
	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_s", Name: "Salary", Kind: model.KindIncome, IsCustom: true}))

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Food", categories[0].Name)
	assert.Equal(t, "Salary", categories[1].Name)
	assert.Equal(t, "Transport", categories[2].Name)
}

func TestCategoryUpdate(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_misc", Name: "Misc", Kind: model.KindExpenditure, IsCustom: true}))

	updated := model.Category{ID: "cat_misc", Name: "Miscellaneous", Kind: model.KindIncome, IsCustom: false}
	require.NoError(t, store.UpdateCategory(ctx, updated))

	got, err := store.GetCategory(ctx, "cat_misc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, updated, *got)
}

func seedRecordWithCategory(t *testing.T, store *Store, recID, catID string) {
	t.Helper()
	ctx := context.Background()
	rec := &model.Record{
		ID:         recID,
		Kind:       model.KindExpenditure,
		Amount:     10,
		Date:       "2025-10-01T10:00:00",
		CategoryID: &catID,
	}
	require.NoError(t, store.SaveRecord(ctx, rec))
}

func TestCategoryDeleteSetNull(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}))
	seedRecordWithCategory(t, store, "rec_1", "cat_food")
	seedRecordWithCategory(t, store, "rec_2", "cat_food")

	require.NoError(t, store.DeleteCategory(ctx, "cat_food", DeleteSetNull, ""))

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories, "deleted category must be gone from list")

	records, err := store.QueryRecords(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Nil(t, rec.CategoryID, "record %s should be uncategorized", rec.ID)
	}
}

func TestCategoryDeleteMoveToOther(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}))
	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_grocery", Name: "Groceries", Kind: model.KindExpenditure, IsCustom: true}))
	seedRecordWithCategory(t, store, "rec_1", "cat_food")

	require.NoError(t, store.DeleteCategory(ctx, "cat_food", DeleteMoveToOther, "cat_grocery"))

	records, err := store.QueryRecords(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].CategoryID)
	assert.Equal(t, "cat_grocery", *records[0].CategoryID)

	got, err := store.GetCategory(ctx, "cat_food")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCategoryDeleteMoveToOtherRequiresTarget(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}))
	seedRecordWithCategory(t, store, "rec_1", "cat_food")

	err := store.DeleteCategory(ctx, "cat_food", DeleteMoveToOther, "")
	assert.ErrorIs(t, err, common.ErrPrecondition)

	// Nothing happened: category and reference both intact.
	got, getErr := store.GetCategory(ctx, "cat_food")
	require.NoError(t, getErr)
	assert.NotNil(t, got)

	records, queryErr := store.QueryRecords(ctx, QueryOptions{})
	require.NoError(t, queryErr)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].CategoryID)
	assert.Equal(t, "cat_food", *records[0].CategoryID)
}

func TestCategoryDeleteUnknownID(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	err := store.DeleteCategory(context.Background(), "cat_missing", DeleteSetNull, "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryDeleteMoveToUnknownTarget(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AddCategory(ctx, model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}))
	seedRecordWithCategory(t, store, "rec_1", "cat_food")

	err := store.DeleteCategory(ctx, "cat_food", DeleteMoveToOther, "cat_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Nothing happened: category and reference both intact.
	got, getErr := store.GetCategory(ctx, "cat_food")
	require.NoError(t, getErr)
	assert.NotNil(t, got)
}

func TestCategoryDeleteUnknownStrategy(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	err := store.DeleteCategory(context.Background(), "cat_x", DeleteStrategy("CASCADE"), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
