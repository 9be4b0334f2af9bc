// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brigh-server/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownAccount = errors.New("webhook event does not map to a known account")

// VerifyEvent checks the Stripe-Signature header against the payload and
// returns the parsed event. Verification is delegated entirely to the
// provider's library.
func VerifyEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, secret)
}

// ApplyEvent maps a verified event to an account and writes the new plan.
// Every provider event ID is recorded in the webhook_events ledger before
// any mutation; a replayed delivery hits the unique index and is skipped,
// so applying the same event twice never double-applies side effects.
func ApplyEvent(conn *gorm.DB, event stripe.Event) (Outcome, error) {
	outcome := Outcome{Status: models.Skipped}

	err := conn.Transaction(func(tx *gorm.DB) error {
		record := models.WebhookEvent{
			ProviderEventID: event.ID,
			Type:            string(event.Type),
			ProcessedAt:     time.Now(),
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already processed, acknowledge without side effects.
			return nil
		}

		switch event.Type {
		case "checkout.session.completed":
			return applyCheckoutCompleted(tx, event, &outcome)
		case "customer.subscription.updated":
			return applySubscriptionUpdated(tx, event, &outcome)
		case "customer.subscription.deleted":
			return applySubscriptionDeleted(tx, event, &outcome)
		default:
			outcome.Status = models.Processed
			return nil
		}
	})
	if err != nil {
		return Outcome{Status: models.Failed}, err
	}
	return outcome, nil
}

func applyCheckoutCompleted(tx *gorm.DB, event stripe.Event, outcome *Outcome) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	accountID := session.ClientReferenceID
	if accountID == "" {
		accountID = session.Metadata["account_id"]
	}
	if accountID == "" {
		return ErrUnknownAccount
	}

	var user models.User
	if err := tx.Where("account_id = ?", accountID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownAccount
		}
		return err
	}

	var customerID, subscriptionID *string
	if session.Customer != nil && session.Customer.ID != "" {
		customerID = &session.Customer.ID
	}
	if session.Subscription != nil && session.Subscription.ID != "" {
		subscriptionID = &session.Subscription.ID
	}

	return setPlan(tx, user, models.ProPlan, models.ActiveSubscription, customerID, subscriptionID, outcome)
}

func applySubscriptionUpdated(tx *gorm.DB, event stripe.Event, outcome *Outcome) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	user, err := userForStripeSubscription(tx, &sub)
	if err != nil {
		return err
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive:
		return setPlan(tx, *user, models.ProPlan, models.ActiveSubscription, nil, &sub.ID, outcome)
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return setPlan(tx, *user, models.FreePlan, models.CanceledSubscription, nil, nil, outcome)
	default:
		// past_due and friends keep the plan, flag the subscription.
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ?", user.ID).
			Update("status", models.InactiveSubscription).Error; err != nil {
			return err
		}
		outcome.Status = models.Processed
		outcome.User = user
		return nil
	}
}

func applySubscriptionDeleted(tx *gorm.DB, event stripe.Event, outcome *Outcome) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	user, err := userForStripeSubscription(tx, &sub)
	if err != nil {
		return err
	}
	return setPlan(tx, *user, models.FreePlan, models.CanceledSubscription, nil, nil, outcome)
}

func userForStripeSubscription(tx *gorm.DB, sub *stripe.Subscription) (*models.User, error) {
	query := tx.Model(&models.Subscription{})
	switch {
	case sub.ID != "":
		query = query.Where("stripe_subscription_id = ?", sub.ID)
	case sub.Customer != nil && sub.Customer.ID != "":
		query = query.Where("stripe_customer_id = ?", sub.Customer.ID)
	default:
		return nil, ErrUnknownAccount
	}

	var subscription models.Subscription
	if err := query.First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, err
	}

	var user models.User
	if err := tx.Where("id = ?", subscription.UserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// setPlan writes the target plan onto the account's subscription. Setting
// the same plan again is a no-op apart from refreshed Stripe references.
func setPlan(tx *gorm.DB, user models.User, planName models.PlanName, status models.SubscriptionStatus, customerID, subscriptionID *string, outcome *Outcome) error {
	var plan models.Plan
	if err := tx.Where("name = ?", planName).First(&plan).Error; err != nil {
		return fmt.Errorf("failed to fetch plan %s: %w", planName, err)
	}

	var subscription models.Subscription
	if err := tx.Where("user_id = ?", user.ID).
		Assign(models.Subscription{
			UserID:    user.ID,
			StartedAt: time.Now(),
		}).FirstOrCreate(&subscription).Error; err != nil {
		return err
	}

	planChanged := subscription.PlanID != plan.ID

	updates := map[string]any{
		"plan_id": plan.ID,
		"status":  status,
	}
	if customerID != nil {
		updates["stripe_customer_id"] = *customerID
	}
	if subscriptionID != nil {
		updates["stripe_subscription_id"] = *subscriptionID
	}
	if err := tx.Model(&subscription).Updates(updates).Error; err != nil {
		return err
	}

	if planName == models.ProPlan && planChanged {
		if err := tx.Create(&models.Stats{Type: models.StatsTypeUpgrade}).Error; err != nil {
			return err
		}
	}

	outcome.Status = models.Processed
	outcome.User = &user
	if planChanged {
		outcome.Plan = &planName
	}
	return nil
}
