package ratelimit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store increments fixed-window counters. One row per
// (action, identifier, window) tuple; the increment is a single atomic upsert
// so stateless API instances share limits without coordination.
type Store interface {
	IncrementAndGet(ctx context.Context, action, identifier string, windowStart time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type storeImpl struct {
	db *gorm.DB
}

// NewStore returns a counter store bound to the provided database.
func NewStore(db *gorm.DB) Store {
	return &storeImpl{db: db}
}

func (s *storeImpl) IncrementAndGet(ctx context.Context, action, identifier string, windowStart time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO rate_limit_counters (action, identifier, window_start, count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (action, identifier, window_start)
		DO UPDATE SET count = rate_limit_counters.count + 1
		RETURNING count`,
		action, identifier, windowStart,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *storeImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Exec(
		"DELETE FROM rate_limit_counters WHERE window_start < ?", cutoff,
	)
	return result.RowsAffected, result.Error
}
