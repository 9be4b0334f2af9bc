// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"fmt"

	"brigh-server/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// NewCheckoutSession creates a Stripe Checkout session that subscribes the
// account to the given plan. The account ID travels in both
// client_reference_id and metadata so the webhook can map the completed
// session back to the account.
func NewCheckoutSession(user models.User, plan models.Plan) (*stripe.CheckoutSession, error) {
	if stripe.Key == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}
	if plan.StripePriceID == nil || *plan.StripePriceID == "" {
		return nil, fmt.Errorf("plan %s has no stripe price ID", plan.Name)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(*plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(BaseURL() + "/v1/billing/success"),
		CancelURL:         stripe.String(BaseURL() + "/v1/billing/cancel"),
		ClientReferenceID: stripe.String(user.AccountID),
		CustomerEmail:     stripe.String(user.Email),
	}
	params.AddMetadata("account_id", user.AccountID)

	return session.New(params)
}
