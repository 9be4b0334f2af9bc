// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"brigh-server/commons"
	"brigh-server/models"

	"github.com/stripe/stripe-go/v82"
)

// Outcome reports what a webhook event did to local state.
type Outcome struct {
	Status models.EventStatus
	User   *models.User
	// Plan holds the plan the account was moved to, nil when the event
	// changed nothing.
	Plan *models.PlanName
}

func InitStripe() {
	stripe.Key = commons.GetEnv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		commons.Logger.Warn("STRIPE_SECRET_KEY is not set, billing endpoints will be unavailable")
	}
}

func WebhookSecret() string {
	return commons.GetEnv("STRIPE_WEBHOOK_SECRET")
}

func BaseURL() string {
	return commons.GetEnv("BASE_URL", "http://localhost:8080")
}
