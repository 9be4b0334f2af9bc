// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"testing"
)

func TestValidatePasswordPolicy(t *testing.T) {
	t.Setenv("PWNED_PASSWORDS_ENABLED", "false")

	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid password", "MySecretPassword@123", true},
		{"too short", "Ab1!", false},
		{"missing uppercase", "mysecretpassword@123", false},
		{"missing lowercase", "MYSECRETPASSWORD@123", false},
		{"missing digit", "MySecretPassword@", false},
		{"missing special char", "MySecretPassword123", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(context.Background(), tc.password)
			if tc.valid && err != nil {
				t.Errorf("Expected %q to pass, got: %v", tc.password, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("Expected %q to be rejected", tc.password)
			}
		})
	}
}
