// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"brigh-server/crypto"

	"gorm.io/gorm"
)

var AllModels []any

type User struct {
	ID        uint   `gorm:"primaryKey"`
	AccountID string `gorm:"size:64;not null;uniqueIndex"`
	Email     string `gorm:"not null;uniqueIndex"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.AccountID == "" {
		user.AccountID, err = crypto.GenerateRandomString("acct_", 16, "hex")
		if err != nil {
			return err
		}
	}
	return
}

func init() {
	AllModels = append(AllModels, &User{})
}
