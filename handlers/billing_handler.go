// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"net/http"

	"brigh-server/billing"
	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CreateCheckoutHandler godoc
// @Summary      Start a PRO upgrade checkout
// @Description  Creates a hosted checkout session for upgrading the account to the PRO plan and returns the redirect URL.
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} CheckoutResponse "Checkout session created"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      409 {object} echo.HTTPError "Account already on PRO"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Failure      503 {object} echo.HTTPError "Billing not configured"
// @Router       /v1/billing/checkout [post]
func CreateCheckoutHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var proPlan models.Plan
	if err := db.Conn.Where("name = ?", models.ProPlan).First(&proPlan).Error; err != nil {
		logger.Errorf("Failed to fetch PRO plan: %v", err)
		return echo.ErrInternalServerError
	}

	if proPlan.StripePriceID == nil || *proPlan.StripePriceID == "" {
		logger.Error("PRO plan has no billing price configured.")
		return &echo.HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "Billing is not configured, please contact support",
		}
	}

	subscription := models.Subscription{}
	err = db.Conn.Preload("Plan").Where("user_id = ?", user.ID).First(&subscription).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Errorf("Failed to fetch subscription: %v", err)
		return echo.ErrInternalServerError
	}

	if err == nil && subscription.Plan.Name == models.ProPlan && subscription.Status == models.ActiveSubscription {
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This account is already on the PRO plan",
		}
	}

	checkoutSession, err := billing.NewCheckoutSession(*user, proPlan)
	if err != nil {
		logger.Errorf("Failed to create checkout session: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Checkout session created for account %s", user.AccountID)
	return c.JSON(http.StatusOK, CheckoutResponse{
		URL:       checkoutSession.URL,
		SessionID: checkoutSession.ID,
		Message:   "Checkout session created successfully",
	})
}

// BillingSuccessHandler godoc
// @Summary      Checkout success landing
// @Description  Landing page after a completed checkout. Plan activation happens via webhook, not here.
// @Tags         billing
// @Produce      json
// @Success      200 {object} GenericResponse "Checkout completed"
// @Router       /v1/billing/success [get]
func BillingSuccessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "Payment received. Your PRO plan will be active within a few moments.",
	})
}

// BillingCancelHandler godoc
// @Summary      Checkout cancel landing
// @Description  Landing page after an abandoned checkout.
// @Tags         billing
// @Produce      json
// @Success      200 {object} GenericResponse "Checkout canceled"
// @Router       /v1/billing/cancel [get]
func BillingCancelHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "Checkout canceled. Your plan was not changed.",
	})
}
