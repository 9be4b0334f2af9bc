// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"brigh-server/crypto"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	ActiveSubscription   SubscriptionStatus = "ACTIVE"
	InactiveSubscription SubscriptionStatus = "INACTIVE"
	CanceledSubscription SubscriptionStatus = "CANCELED"
)

type Subscription struct {
	ID                   uint               `gorm:"primaryKey"`
	SubscriptionID       string             `gorm:"size:64;uniqueIndex"`
	Status               SubscriptionStatus `gorm:"size:50;not null;default:'ACTIVE'"`
	StripeCustomerID     *string            `gorm:"size:255;default:null;index"`
	StripeSubscriptionID *string            `gorm:"size:255;default:null;index"`
	StartedAt            time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            gorm.DeletedAt `gorm:"index"`
	UserID               uint           `gorm:"index"`
	User                 User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PlanID               uint
	Plan                 Plan `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (subscription *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if subscription.SubscriptionID == "" {
		subscription.SubscriptionID, err = crypto.GenerateRandomString("sub_", 16, "hex")
		if err != nil {
			return err
		}
	}
	return
}

func init() {
	AllModels = append(AllModels, &Subscription{})
}
