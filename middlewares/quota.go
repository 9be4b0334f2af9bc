// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"brigh-server/db"
	"brigh-server/models"
	"brigh-server/quota"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// QuotaMiddleware enforces the per-plan daily request ceiling for API key
// authenticated requests. Must run after VerifyAuthMiddleware. A rejected
// request gets 429 (distinct from the 401 auth failure) and does not
// consume quota.
func QuotaMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := c.Logger()

		apiKey, ok := c.Get("api_key").(models.APIKey)
		if !ok {
			logger.Error("Quota middleware requires API key authentication.")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "API key authentication is required",
			}
		}

		plan, err := planForUser(apiKey.UserID)
		if err != nil {
			logger.Errorf("Failed to resolve plan for user %d: %v", apiKey.UserID, err)
			return echo.ErrInternalServerError
		}

		day := quota.Day(time.Now())
		decision, err := quota.Consume(db.Conn, apiKey.ID, day, plan.MaxRequestsPerDay)
		if err != nil {
			logger.Errorf("Quota check failed: %v", err)
			return echo.ErrInternalServerError
		}

		setQuotaHeaders(c, decision)

		if !decision.Allowed {
			status := models.Rejected
			category := models.Quota
			description := fmt.Sprintf("Daily request limit reached for key %s", apiKey.KeyID)
			if err := db.Conn.Create(&models.EventLog{
				Category:    &category,
				Status:      &status,
				KeyID:       &apiKey.KeyID,
				Description: &description,
				UserID:      apiKey.UserID,
			}).Error; err != nil {
				logger.Error("Failed to record quota event log: ", err)
			}

			logger.Warnf("Quota exceeded for key %s (%d/%d)", apiKey.KeyID, decision.Used, *plan.MaxRequestsPerDay)
			return &echo.HTTPError{
				Code:    http.StatusTooManyRequests,
				Message: fmt.Sprintf("Daily limit exceeded: %d/%d used. Upgrade to PRO for a higher ceiling.", decision.Used, *plan.MaxRequestsPerDay),
			}
		}

		c.Set("quota", decision)
		c.Set("plan", plan)
		return next(c)
	}
}

// planForUser resolves the effective plan for quota purposes. Accounts
// whose subscription is not ACTIVE are throttled at the FREE ceiling.
func planForUser(userID uint) (models.Plan, error) {
	subscription := models.Subscription{}
	err := db.Conn.Preload("Plan").Where("user_id = ?", userID).First(&subscription).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Plan{}, err
	}

	if err == nil && subscription.Status == models.ActiveSubscription {
		return subscription.Plan, nil
	}

	var freePlan models.Plan
	if err := db.Conn.Where("name = ?", models.FreePlan).First(&freePlan).Error; err != nil {
		return models.Plan{}, err
	}
	return freePlan, nil
}

func setQuotaHeaders(c echo.Context, decision quota.Decision) {
	if decision.Limit == nil {
		return
	}
	header := c.Response().Header()
	header.Set("X-RateLimit-Limit", strconv.FormatUint(uint64(*decision.Limit), 10))
	if decision.Remaining != nil {
		header.Set("X-RateLimit-Remaining", strconv.FormatInt(*decision.Remaining, 10))
	}
	midnight := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	header.Set("X-RateLimit-Reset", strconv.FormatInt(midnight.Unix(), 10))
}
