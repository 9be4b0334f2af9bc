// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// WebhookEvent is the idempotency ledger for payment provider events.
// The unique index on ProviderEventID makes replayed deliveries no-ops.
type WebhookEvent struct {
	ID              uint   `gorm:"primaryKey"`
	ProviderEventID string `gorm:"size:255;not null;uniqueIndex"`
	Type            string `gorm:"size:255;not null"`
	ProcessedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func init() {
	AllModels = append(AllModels, &WebhookEvent{})
}
