// SPDX-License-Identifier: GPL-3.0-only

// Package events publishes billing lifecycle messages to an AMQP topic
// exchange so downstream consumers (dashboards, CRM syncs) can react to
// plan changes without polling the database.
package events

import (
	"context"
	"encoding/json"
	"time"

	"brigh-server/commons"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "billing.events"

const (
	SubscriptionActivated = "subscription.activated"
	SubscriptionCanceled  = "subscription.canceled"
	APIKeyRevoked         = "apikey.revoked"
)

type Message struct {
	Event      string    `json:"event"`
	AccountID  string    `json:"account_id"`
	Plan       string    `json:"plan,omitempty"`
	KeyID      string    `json:"key_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publish sends a message to the billing exchange. When AMQP_URL is not
// configured this is a no-op, so the server runs fine without a broker.
func Publish(msg Message) error {
	amqpURL := commons.GetEnv("AMQP_URL")
	if amqpURL == "" {
		commons.Logger.Debugf("AMQP_URL not set, dropping event %s", msg.Event)
		return nil
	}

	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		commons.Logger.Error("Failed to connect to AMQP broker:", err)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		commons.Logger.Error("Failed to open AMQP channel:", err)
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		commons.Logger.Error("Failed to declare billing exchange:", err)
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(ctx, Exchange, msg.Event, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.OccurredAt,
		Body:         body,
	})
	if err != nil {
		commons.Logger.Error("Failed to publish billing event:", err)
		return err
	}

	commons.Logger.Debugf("Published billing event %s for account %s", msg.Event, msg.AccountID)
	return nil
}
