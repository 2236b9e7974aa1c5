package models

import "time"

// RateLimitCounter is one fixed-window request counter. The composite key
// (action, identifier, window_start) lets a single upsert increment the
// count atomically across stateless instances.
type RateLimitCounter struct {
	Action      string    `gorm:"column:action;primaryKey"`
	Identifier  string    `gorm:"column:identifier;primaryKey"`
	WindowStart time.Time `gorm:"column:window_start;primaryKey"`
	Count       int64     `gorm:"column:count;not null;default:0"`
}
