// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"brigh-server/models"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	freeLimit := uint(25)
	freeKeys := uint(3)
	proLimit := uint(10000)
	plans := []models.Plan{
		{Name: models.FreePlan, Price: 0, Currency: "USD", MaxRequestsPerDay: &freeLimit, MaxAPIKeys: &freeKeys},
		{Name: models.ProPlan, Price: 900, Currency: "USD", MaxRequestsPerDay: &proLimit},
	}
	if err := conn.Create(&plans).Error; err != nil {
		t.Fatalf("Failed to seed plans: %v", err)
	}
	return conn
}

func seedFreeUser(t *testing.T, conn *gorm.DB) models.User {
	t.Helper()

	user := models.User{Email: "user@example.com", Password: "irrelevant"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	var freePlan models.Plan
	if err := conn.Where("name = ?", models.FreePlan).First(&freePlan).Error; err != nil {
		t.Fatalf("Failed to fetch free plan: %v", err)
	}

	subscription := models.Subscription{
		UserID:    user.ID,
		PlanID:    freePlan.ID,
		Status:    models.ActiveSubscription,
		StartedAt: time.Now(),
	}
	if err := conn.Create(&subscription).Error; err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	return user
}

func planNameForUser(t *testing.T, conn *gorm.DB, userID uint) models.PlanName {
	t.Helper()

	var subscription models.Subscription
	if err := conn.Preload("Plan").Where("user_id = ?", userID).First(&subscription).Error; err != nil {
		t.Fatalf("Failed to fetch subscription: %v", err)
	}
	return subscription.Plan.Name
}

func checkoutCompletedEvent(eventID, accountID string) stripe.Event {
	raw := fmt.Sprintf(`{
		"id": "cs_test_1",
		"object": "checkout.session",
		"client_reference_id": %q,
		"customer": {"id": "cus_test_1"},
		"subscription": {"id": "sub_stripe_1"}
	}`, accountID)

	return stripe.Event{
		ID:   eventID,
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

// signPayload builds a Stripe-Signature header the way Stripe's servers do:
// an HMAC-SHA256 of "<timestamp>.<payload>" keyed with the endpoint secret.
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEventSignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_sig_1",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"client_reference_id": "acct_abc"}}
	}`, stripe.APIVersion))

	event, err := VerifyEvent(payload, signPayload(payload, secret, time.Now()), secret)
	if err != nil {
		t.Fatalf("Expected valid signature to verify, got: %v", err)
	}
	if event.ID != "evt_sig_1" {
		t.Errorf("Expected event ID evt_sig_1, got %s", event.ID)
	}

	if _, err := VerifyEvent(payload, signPayload(payload, "whsec_wrong", time.Now()), secret); err == nil {
		t.Error("Expected verification to fail with the wrong secret")
	}

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = 'X'
	if _, err := VerifyEvent(tampered, signPayload(payload, secret, time.Now()), secret); err == nil {
		t.Error("Expected verification to fail for a tampered payload")
	}
}

func TestApplyCheckoutCompletedUpgradesToPro(t *testing.T) {
	conn := newTestDB(t)
	user := seedFreeUser(t, conn)

	outcome, err := ApplyEvent(conn, checkoutCompletedEvent("evt_1", user.AccountID))
	if err != nil {
		t.Fatalf("ApplyEvent failed: %v", err)
	}

	if outcome.Status != models.Processed {
		t.Errorf("Expected PROCESSED outcome, got %s", outcome.Status)
	}
	if outcome.Plan == nil || *outcome.Plan != models.ProPlan {
		t.Errorf("Expected plan change to PRO, got %v", outcome.Plan)
	}
	if got := planNameForUser(t, conn, user.ID); got != models.ProPlan {
		t.Errorf("Expected subscription on PRO, got %s", got)
	}

	var subscription models.Subscription
	if err := conn.Where("user_id = ?", user.ID).First(&subscription).Error; err != nil {
		t.Fatalf("Failed to fetch subscription: %v", err)
	}
	if subscription.Status != models.ActiveSubscription {
		t.Errorf("Expected ACTIVE status, got %s", subscription.Status)
	}
	if subscription.StripeSubscriptionID == nil || *subscription.StripeSubscriptionID != "sub_stripe_1" {
		t.Errorf("Expected Stripe subscription reference to be stored, got %v", subscription.StripeSubscriptionID)
	}

	var upgrades int64
	conn.Model(&models.Stats{}).Where("type = ?", models.StatsTypeUpgrade).Count(&upgrades)
	if upgrades != 1 {
		t.Errorf("Expected 1 upgrade stat, got %d", upgrades)
	}
}

func TestApplyEventReplayIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	user := seedFreeUser(t, conn)
	event := checkoutCompletedEvent("evt_replay", user.AccountID)

	if _, err := ApplyEvent(conn, event); err != nil {
		t.Fatalf("First delivery failed: %v", err)
	}

	outcome, err := ApplyEvent(conn, event)
	if err != nil {
		t.Fatalf("Replayed delivery failed: %v", err)
	}
	if outcome.Status != models.Skipped {
		t.Errorf("Expected replay to be SKIPPED, got %s", outcome.Status)
	}

	var upgrades int64
	conn.Model(&models.Stats{}).Where("type = ?", models.StatsTypeUpgrade).Count(&upgrades)
	if upgrades != 1 {
		t.Errorf("Replay must not double-apply side effects, got %d upgrade stats", upgrades)
	}
}

func TestApplySubscriptionDeletedDowngradesToFree(t *testing.T) {
	conn := newTestDB(t)
	user := seedFreeUser(t, conn)

	if _, err := ApplyEvent(conn, checkoutCompletedEvent("evt_up", user.AccountID)); err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}

	deleted := stripe.Event{
		ID:   "evt_del",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id": "sub_stripe_1", "object": "subscription"}`)},
	}
	outcome, err := ApplyEvent(conn, deleted)
	if err != nil {
		t.Fatalf("ApplyEvent failed: %v", err)
	}

	if outcome.Plan == nil || *outcome.Plan != models.FreePlan {
		t.Errorf("Expected downgrade to FREE, got %v", outcome.Plan)
	}
	if got := planNameForUser(t, conn, user.ID); got != models.FreePlan {
		t.Errorf("Expected subscription on FREE, got %s", got)
	}

	var subscription models.Subscription
	if err := conn.Where("user_id = ?", user.ID).First(&subscription).Error; err != nil {
		t.Fatalf("Failed to fetch subscription: %v", err)
	}
	if subscription.Status != models.CanceledSubscription {
		t.Errorf("Expected CANCELED status, got %s", subscription.Status)
	}
}

func TestApplyCheckoutUnknownAccount(t *testing.T) {
	conn := newTestDB(t)

	_, err := ApplyEvent(conn, checkoutCompletedEvent("evt_ghost", "acct_does_not_exist"))
	if !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("Expected ErrUnknownAccount, got %v", err)
	}

	// The rolled back delivery must not be marked processed, Stripe retries it.
	var count int64
	conn.Model(&models.WebhookEvent{}).Where("provider_event_id = ?", "evt_ghost").Count(&count)
	if count != 0 {
		t.Errorf("Expected no ledger entry for a failed delivery, got %d", count)
	}
}

func TestApplyUnhandledEventTypeIsAcknowledged(t *testing.T) {
	conn := newTestDB(t)

	event := stripe.Event{
		ID:   "evt_other",
		Type: "invoice.paid",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	outcome, err := ApplyEvent(conn, event)
	if err != nil {
		t.Fatalf("ApplyEvent failed: %v", err)
	}
	if outcome.Status != models.Processed {
		t.Errorf("Expected unhandled types to be acknowledged, got %s", outcome.Status)
	}
	if outcome.Plan != nil {
		t.Errorf("Expected no plan change, got %v", outcome.Plan)
	}
}
