package middlewares

import (
	"context"
	"errors"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/requisition_inbound/models"
	"gorm.io/gorm"
)

type countFunc func(ctx context.Context, db *gorm.DB, headerIds []int) (map[int]int64, error)

type headerCountReader struct {
	db    *gorm.DB
	count countFunc
}

func (r *headerCountReader) getCounts(ctx context.Context, ids []int) []*dataloader.Result[int64] {
	counts, err := r.count(ctx, r.db, ids)
	if err != nil {
		return handleError[int64](len(ids), err)
	}
	results := make([]*dataloader.Result[int64], 0, len(ids))
	for _, id := range ids {
		results = append(results, &dataloader.Result[int64]{Data: counts[id]})
	}
	return results
}

// LoadHeaderSummaries annotates headers with their item and approval counts,
// batching the count queries through the request's loaders.
func LoadHeaderSummaries(ctx context.Context, headers []*models.Header) ([]*models.HeaderSummary, error) {
	summaries := make([]*models.HeaderSummary, 0, len(headers))
	if len(headers) == 0 {
		return summaries, nil
	}
	loaders := For(ctx)
	if loaders == nil {
		return nil, errors.New("dataloaders missing from context")
	}

	ids := make([]int, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	itemThunk := loaders.ItemCountLoader.LoadMany(ctx, ids)
	approvalThunk := loaders.ApprovalCountLoader.LoadMany(ctx, ids)

	itemCounts, errs := itemThunk()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	approvalCounts, errs := approvalThunk()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for i, h := range headers {
		summaries = append(summaries, &models.HeaderSummary{
			Header:        *h,
			ItemCount:     itemCounts[i],
			ApprovalCount: approvalCounts[i],
		})
	}
	return summaries, nil
}
