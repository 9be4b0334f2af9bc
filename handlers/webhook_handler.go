// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"io"
	"net/http"

	"brigh-server/billing"
	"brigh-server/db"
	"brigh-server/events"
	"brigh-server/models"
	"brigh-server/notifications"

	"github.com/labstack/echo/v4"
)

// StripeWebhookHandler godoc
// @Summary      Stripe webhook receiver
// @Description  Verifies and applies billing events from Stripe. Replayed deliveries are acknowledged without side effects.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "Stripe webhook signature header"
// @Success      200 {object} GenericResponse "Event processed"
// @Failure      400 {object} echo.HTTPError "Invalid payload or signature"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/billing/webhook [post]
func StripeWebhookHandler(c echo.Context) error {
	logger := c.Logger()

	secret := billing.WebhookSecret()
	if secret == "" {
		logger.Error("STRIPE_WEBHOOK_SECRET is not configured.")
		return echo.ErrInternalServerError
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read webhook payload:", err)
		return echo.ErrBadRequest
	}

	event, err := billing.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"), secret)
	if err != nil {
		logger.Error("Webhook signature verification failed:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid webhook signature",
		}
	}

	outcome, err := billing.ApplyEvent(db.Conn, event)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownAccount) {
			logger.Warnf("Webhook event %s does not map to a known account", event.ID)
			logWebhookEvent(c, outcome, event.ID, "Event did not map to a known account")
			return c.JSON(http.StatusOK, GenericResponse{
				Message: "Event acknowledged",
			})
		}
		logger.Errorf("Failed to apply webhook event %s: %v", event.ID, err)
		return echo.ErrInternalServerError
	}

	if outcome.Status == models.Skipped {
		logger.Infof("Webhook event %s already processed, skipping", event.ID)
		logWebhookEvent(c, outcome, event.ID, "Duplicate delivery skipped")
		return c.JSON(http.StatusOK, GenericResponse{
			Message: "Event already processed",
		})
	}

	logWebhookEvent(c, outcome, event.ID, "Billing event applied")

	if outcome.User != nil && outcome.Plan != nil {
		plan := *outcome.Plan

		if err := notifications.NotifyPlanChanged(*outcome.User, plan); err != nil {
			logger.Error("Failed to send plan change notification: ", err)
		}

		routingKey := events.SubscriptionActivated
		if plan == models.FreePlan {
			routingKey = events.SubscriptionCanceled
		}
		if err := events.Publish(events.Message{
			Event:     routingKey,
			AccountID: outcome.User.AccountID,
			Plan:      string(plan),
		}); err != nil {
			logger.Error("Failed to publish billing event: ", err)
		}
	}

	logger.Infof("Webhook event %s (%s) processed", event.ID, event.Type)
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "Event processed",
	})
}

// logWebhookEvent writes an audit row for the delivery. Failures here are
// logged but never fail the webhook, Stripe would retry otherwise.
func logWebhookEvent(c echo.Context, outcome billing.Outcome, providerEventID, description string) {
	logger := c.Logger()

	status := outcome.Status
	category := models.Payment
	desc := description + " (" + providerEventID + ")"
	entry := models.EventLog{
		Category:    &category,
		Status:      &status,
		Description: &desc,
	}
	if outcome.User != nil {
		entry.UserID = outcome.User.ID
	}

	if err := db.Conn.Create(&entry).Error; err != nil {
		logger.Error("Failed to record webhook event log: ", err)
	}
}
