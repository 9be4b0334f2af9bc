// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"net/http"
	"time"

	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GetSubscriptionHandler godoc
// @Summary      Get subscription details
// @Description  Retrieves the authenticated account's subscription, including plan details and status.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object}  GetSubscriptionResponse "Subscription details retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      404 {object} echo.HTTPError     "No subscription found for the account"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/subscriptions [get]
func GetSubscriptionHandler(c echo.Context) error {
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
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnf("No subscription found for user ID %d", user.ID)
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "No subscription found for this account",
			}
		}
		logger.Errorf("Failed to fetch subscription: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, GetSubscriptionResponse{
		Message:        "Subscription details retrieved successfully",
		SubscriptionID: subscription.SubscriptionID,
		Status:         string(subscription.Status),
		StartedAt:      subscription.StartedAt.Format(time.RFC3339),
		Plan: PlanDetails{
			ID:                subscription.Plan.ID,
			Name:              string(subscription.Plan.Name),
			Price:             subscription.Plan.Price,
			Currency:          subscription.Plan.Currency,
			MaxRequestsPerDay: subscription.Plan.MaxRequestsPerDay,
			MaxAPIKeys:        subscription.Plan.MaxAPIKeys,
		},
		UpdatedAt: subscription.UpdatedAt.Format(time.RFC3339),
	})
}
