// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"
	"strconv"

	"brigh-server/commons"
	"brigh-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func limitFromEnv(key, fallback string) *uint {
	v, err := strconv.Atoi(commons.GetEnv(key, fallback))
	if err != nil || v < 0 {
		v, _ = strconv.Atoi(fallback)
	}
	limit := uint(v)
	return &limit
}

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_seed_free_pro_plans",
			Migrate: func(tx *gorm.DB) error {
				freeMaxAPIKeys := uint(3)
				proPriceID := commons.GetEnv("STRIPE_PRO_PRICE_ID")
				plans := []models.Plan{
					{
						Name:              models.FreePlan,
						MaxRequestsPerDay: limitFromEnv("FREE_LIMIT_PER_DAY", "25"),
						MaxAPIKeys:        &freeMaxAPIKeys,
					},
					{
						Name:              models.ProPlan,
						Price:             900,
						Currency:          "USD",
						MaxRequestsPerDay: limitFromEnv("PRO_LIMIT_PER_DAY", "10000"),
					},
				}
				if proPriceID != "" {
					plans[1].StripePriceID = &proPriceID
				}

				for _, plan := range plans {
					if err := tx.Where("name = ?", plan.Name).FirstOrCreate(&plan).Error; err != nil {
						return fmt.Errorf("failed to create plan %s: %w", plan.Name, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
		{
			ID: "002_subscribe_existing_users_to_free_plan",
			Migrate: func(tx *gorm.DB) error {
				var users []models.User
				if err := tx.Find(&users).Error; err != nil {
					return fmt.Errorf("failed to fetch users: %w", err)
				}

				var freePlan models.Plan
				if err := tx.Where("name = ?", models.FreePlan).First(&freePlan).Error; err != nil {
					return fmt.Errorf("failed to fetch free plan: %w", err)
				}

				for _, user := range users {
					var subscription models.Subscription
					if err := tx.Where("user_id = ?", user.ID).
						Assign(models.Subscription{
							UserID:    user.ID,
							PlanID:    freePlan.ID,
							Status:    models.ActiveSubscription,
							StartedAt: user.CreatedAt,
						}).FirstOrCreate(&subscription).Error; err != nil {
						return fmt.Errorf("failed to create subscription for user %d: %w", user.ID, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
		{
			ID: "003_update_pro_price_id",
			Migrate: func(tx *gorm.DB) error {
				proPriceID := commons.GetEnv("STRIPE_PRO_PRICE_ID")
				if proPriceID == "" {
					return nil
				}
				if err := tx.Model(&models.Plan{}).
					Where("name = ?", models.ProPlan).
					Update("stripe_price_id", proPriceID).Error; err != nil {
					return fmt.Errorf("failed to update pro plan price ID: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}
