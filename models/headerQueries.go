package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/metrics"
	"gorm.io/gorm"
)

var ErrHeaderNotFound = errors.New("header not found")

const headerDetailCacheTTL = 10 * time.Minute

func headerDetailCacheKey(id int) string {
	return fmt.Sprintf("InboundHeaderDetail:%d", id)
}

// EvictHeaderDetail drops cached detail bundles for the given header ids.
func EvictHeaderDetail(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = headerDetailCacheKey(id)
	}
	return config.RemoveRedisKey(ctx, keys...)
}

// ListHeaders returns the headers that have at least one item, newest first.
func ListHeaders(ctx context.Context, db *gorm.DB) ([]*Header, error) {
	headers := []*Header{}
	err := db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM items WHERE items.header_id = headers.id)").
		Order("received_at DESC").
		Order("id DESC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}
	return headers, nil
}

// CountItemsByHeader counts items per header id; ids without items are absent from the map.
func CountItemsByHeader(ctx context.Context, db *gorm.DB, headerIds []int) (map[int]int64, error) {
	return countByHeader(ctx, db, &Item{}, headerIds)
}

func CountApprovalsByHeader(ctx context.Context, db *gorm.DB, headerIds []int) (map[int]int64, error) {
	return countByHeader(ctx, db, &Approval{}, headerIds)
}

type headerCount struct {
	HeaderId int
	Total    int64
}

func countByHeader(ctx context.Context, db *gorm.DB, model any, headerIds []int) (map[int]int64, error) {
	counts := make(map[int]int64, len(headerIds))
	if len(headerIds) == 0 {
		return counts, nil
	}
	var rows []headerCount
	err := db.WithContext(ctx).
		Model(model).
		Select("header_id, COUNT(*) AS total").
		Where("header_id IN ?", headerIds).
		Group("header_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.HeaderId] = r.Total
	}
	return counts, nil
}

func GetHeader(ctx context.Context, db *gorm.DB, id int) (*Header, error) {
	var header Header
	err := db.WithContext(ctx).Where("id = ?", id).Take(&header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHeaderNotFound
		}
		return nil, err
	}
	return &header, nil
}

// ListItems returns a header's items by line number; an unknown header yields an empty list.
func ListItems(ctx context.Context, db *gorm.DB, headerId int) ([]*Item, error) {
	items := []*Item{}
	err := db.WithContext(ctx).
		Where("header_id = ?", headerId).
		Order("line_num ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListApprovals returns a header's approvals by chain position.
func ListApprovals(ctx context.Context, db *gorm.DB, headerId int) ([]*Approval, error) {
	approvals := []*Approval{}
	err := db.WithContext(ctx).
		Where("header_id = ?", headerId).
		Order("position ASC").
		Order("id ASC").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

// ListAuditHistory returns a header's downstream calls, newest first.
func ListAuditHistory(ctx context.Context, db *gorm.DB, headerId int) ([]*AuditHistory, error) {
	history := []*AuditHistory{}
	err := db.WithContext(ctx).
		Where("header_id = ?", headerId).
		Order("call_timestamp DESC").
		Order("id DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// GetHeaderDetail loads a header with its items, approvals and audit rows.
// Committed headers never change, so the bundle is cached in redis when available.
func GetHeaderDetail(ctx context.Context, db *gorm.DB, id int) (*HeaderDetail, error) {
	logger := config.GetLogger()
	cacheKey := headerDetailCacheKey(id)

	var cached HeaderDetail
	exists, err := config.GetRedisObject(ctx, cacheKey, &cached)
	if err != nil {
		config.LogError(logger, "headerQueries.go", "GetHeaderDetail", "GetRedisObject", cacheKey, err)
	} else if exists && cached.Header != nil {
		metrics.HeaderCacheHitsTotal.Inc()
		return &cached, nil
	}

	header, err := GetHeader(ctx, db, id)
	if err != nil {
		return nil, err
	}
	items, err := ListItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	approvals, err := ListApprovals(ctx, db, id)
	if err != nil {
		return nil, err
	}
	history, err := ListAuditHistory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	detail := &HeaderDetail{
		Header:     header,
		Items:      items,
		Approvals:  approvals,
		RFCHistory: history,
	}
	if err := config.SetRedisObject(ctx, cacheKey, detail, headerDetailCacheTTL); err != nil {
		config.LogError(logger, "headerQueries.go", "GetHeaderDetail", "SetRedisObject", cacheKey, err)
	}
	return detail, nil
}

// FileIdsWithHeaders reports which of the given artifact file ids have a header row.
func FileIdsWithHeaders(ctx context.Context, db *gorm.DB, fileIds []string) (map[string]bool, error) {
	found := make(map[string]bool, len(fileIds))
	if len(fileIds) == 0 {
		return found, nil
	}
	var existing []string
	err := db.WithContext(ctx).
		Model(&Header{}).
		Where("file_id IN ?", fileIds).
		Pluck("file_id", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}
