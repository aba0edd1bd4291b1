// Package service provides the read-side query and statistics services
// composed on top of the storage layer.
package service

import (
	"context"

	"tally/internal/model"
	"tally/internal/storage"
)

// RecordSource is the slice of the storage layer the read-side services
// depend on. *storage.Store satisfies it.
type RecordSource interface {
	QueryRecords(ctx context.Context, opts storage.QueryOptions) ([]model.Record, error)
}

// pageSize is how many records the services fetch per round trip when they
// need the full record set.
const pageSize = 500

// allRecords pages through src until it has every record.
func allRecords(ctx context.Context, src RecordSource) ([]model.Record, error) {
	var all []model.Record
	for offset := 0; ; offset += pageSize {
		page, err := src.QueryRecords(ctx, storage.QueryOptions{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
