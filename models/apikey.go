// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey stores only the argon2id hash of the issued key. The plaintext
// key is KeyID + secret tail and is shown to the caller exactly once.
// Revocation is the soft delete; a revoked key never authenticates again.
type APIKey struct {
	ID         uint   `gorm:"primaryKey"`
	KeyID      string `gorm:"size:255;not null;uniqueIndex"`
	HashedKey  string `gorm:"size:255;not null"`
	Name       string `gorm:"size:255;not null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	UserID     uint           `gorm:"index"`
	User       User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func init() {
	AllModels = append(AllModels, &APIKey{})
}
