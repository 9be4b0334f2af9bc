// SPDX-License-Identifier: GPL-3.0-only

// Package quota enforces per-plan daily request ceilings. Counters live in
// the same database as accounts and keys, one row per (API key, UTC day).
package quota

import (
	"time"

	"brigh-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Decision is the outcome of a single check-and-increment.
type Decision struct {
	Allowed bool
	// Used is today's recorded request count, including this request
	// when it was allowed.
	Used int64
	// Limit is the plan ceiling; nil means unlimited.
	Limit *uint
	// Remaining is Limit - Used, nil when unlimited.
	Remaining *int64
}

// Day returns the UTC calendar day bucket for t.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Consume records one request for the key on the given day unless the
// ceiling has been reached. The increment is a conditional UPDATE guarded
// by `count < ceiling`, so the check and the increment are one statement;
// two concurrent requests can never both slip past the ceiling, and a
// denied request leaves the counter untouched.
func Consume(conn *gorm.DB, apiKeyID uint, day string, limit *uint) (Decision, error) {
	decision := Decision{Limit: limit}

	err := conn.Transaction(func(tx *gorm.DB) error {
		counter := models.UsageCounter{APIKeyID: apiKeyID, Day: day}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return err
		}

		update := tx.Model(&models.UsageCounter{}).
			Where("api_key_id = ? AND day = ?", apiKeyID, day)
		if limit != nil {
			update = update.Where("count < ?", *limit)
		}
		result := update.Update("count", gorm.Expr("count + 1"))
		if result.Error != nil {
			return result.Error
		}
		decision.Allowed = result.RowsAffected > 0

		var current models.UsageCounter
		if err := tx.Where("api_key_id = ? AND day = ?", apiKeyID, day).First(&current).Error; err != nil {
			return err
		}
		decision.Used = current.Count
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	if limit != nil {
		remaining := int64(*limit) - decision.Used
		if remaining < 0 {
			remaining = 0
		}
		decision.Remaining = &remaining
	}
	return decision, nil
}

// UsedToday reads the current counter without consuming quota.
func UsedToday(conn *gorm.DB, apiKeyID uint, day string) (int64, error) {
	var counter models.UsageCounter
	err := conn.Where("api_key_id = ? AND day = ?", apiKeyID, day).First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}
