// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// UsageCounter holds one row per (API key, UTC calendar day). Rows are
// created lazily on the first request of a day and only ever incremented
// by an allowed request; stale days simply stop being queried.
type UsageCounter struct {
	ID        uint   `gorm:"primaryKey"`
	APIKeyID  uint   `gorm:"not null;uniqueIndex:idx_key_day"`
	Day       string `gorm:"size:10;not null;uniqueIndex:idx_key_day"`
	Count     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func init() {
	AllModels = append(AllModels, &UsageCounter{})
}
