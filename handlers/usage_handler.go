// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"time"

	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"
	"brigh-server/quota"

	"github.com/labstack/echo/v4"
)

// GetUsageHandler godoc
// @Summary      Get today's usage
// @Description  Retrieves the current UTC day's request counters for each of the account's API keys.
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} GetUsageResponse "Usage retrieved successfully"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/usage [get]
func GetUsageHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	subscription := models.Subscription{}
	if err := db.Conn.Preload("Plan").Where("user_id = ?", user.ID).First(&subscription).Error; err != nil {
		logger.Errorf("Failed to fetch subscription: %v", err)
		return echo.ErrInternalServerError
	}

	var apiKeys []models.APIKey
	if err := db.Conn.Where("user_id = ?", user.ID).Find(&apiKeys).Error; err != nil {
		logger.Errorf("Failed to fetch API keys: %v", err)
		return echo.ErrInternalServerError
	}

	day := quota.Day(time.Now())
	limit := subscription.Plan.MaxRequestsPerDay

	keys := make([]KeyUsageDetails, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		used, err := quota.UsedToday(db.Conn, apiKey.ID, day)
		if err != nil {
			logger.Errorf("Failed to read usage for key %s: %v", apiKey.KeyID, err)
			return echo.ErrInternalServerError
		}

		var remaining *int64
		if limit != nil {
			left := int64(*limit) - used
			if left < 0 {
				left = 0
			}
			remaining = &left
		}

		keys = append(keys, KeyUsageDetails{
			KeyID:     apiKey.KeyID,
			Name:      apiKey.Name,
			UsedToday: used,
			Limit:     limit,
			Remaining: remaining,
		})
	}

	return c.JSON(http.StatusOK, GetUsageResponse{
		Day:     day,
		Plan:    string(subscription.Plan.Name),
		Keys:    keys,
		Message: "Usage retrieved successfully",
	})
}
