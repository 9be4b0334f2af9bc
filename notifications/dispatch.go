// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"fmt"

	"brigh-server/commons"
	"brigh-server/models"
)

func DispatchNotification(_type NotificationTypes, provider NotificationProviders, data NotificationData) error {
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	var err error
	switch _type {
	case Email:
		mockEmail := commons.GetEnv("MOCK_EMAIL_NOTIFICATIONS")
		if mockEmail == "true" {
			commons.Logger.Debug("Mock email notifications enabled, using mock provider")
			provider = Mock
		}
		err = dispatchEmail(provider, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification:\n%v", err)
		return err
	}

	commons.Logger.Infof("Notification dispatched successfully:\n- type=%s\n- provider=%s", _type, provider)
	return nil
}

// NotifyPlanChanged emails the account after a webhook moved it to a new
// plan. Upgrades and downgrades share the template, the copy differs.
func NotifyPlanChanged(user models.User, plan models.PlanName) error {
	subject := "Your PRO plan is now active"
	headline := "Welcome to PRO"
	body := "Your account has been upgraded. Your new daily request ceiling is active immediately."
	if plan == models.FreePlan {
		subject = "Your subscription has ended"
		headline = "Back on the FREE plan"
		body = "Your PRO subscription has ended and your account is back on the FREE plan. Existing API keys keep working within the FREE daily ceiling."
	}

	return DispatchNotification(Email, SMTP, NotificationData{
		To:       user.Email,
		Subject:  subject,
		Template: "plan_changed",
		Variables: map[string]any{
			"Headline":  headline,
			"Body":      body,
			"Plan":      string(plan),
			"AccountID": user.AccountID,
		},
	})
}

func dispatchEmail(provider NotificationProviders, data NotificationData) error {
	switch provider {
	case SMTP:
		return SMTPClient(data)
	case Mock:
		return MockEmailClient(data)
	default:
		return fmt.Errorf("unsupported email provider: %s", provider)
	}
}
