// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"strings"
	"testing"
)

func TestHashSecret(t *testing.T) {
	crypto := NewCrypto()
	secret := "testsecret123"

	hash, err := crypto.HashSecret(secret)
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	hash2, err := crypto.HashSecret(secret)
	if err != nil {
		t.Fatalf("Second HashSecret failed: %v", err)
	}

	if hash == hash2 {
		t.Error("Two hashes of same secret should be different (due to salt)")
	}
}

func TestVerifySecret(t *testing.T) {
	crypto := NewCrypto()
	secret := "testsecret123"
	wrongSecret := "wrongsecret"

	hash, err := crypto.HashSecret(secret)
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	err = crypto.VerifySecret(secret, hash)
	if err != nil {
		t.Errorf("VerifySecret failed for correct secret: %v", err)
	}

	err = crypto.VerifySecret(wrongSecret, hash)
	if err == nil {
		t.Error("VerifySecret should fail for wrong secret")
	}

	err = crypto.VerifySecret(secret, "invalid-hash")
	if err == nil {
		t.Error("VerifySecret should fail for invalid hash")
	}
}

func TestGenerateRandomString(t *testing.T) {
	key, err := GenerateRandomString("ak_", 16, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if !strings.HasPrefix(key, "ak_") {
		t.Errorf("Expected ak_ prefix, got %s", key)
	}
	if len(key) != 3+32 {
		t.Errorf("Expected 35 chars, got %d", len(key))
	}

	key2, err := GenerateRandomString("ak_", 16, "hex")
	if err != nil {
		t.Fatalf("Second GenerateRandomString failed: %v", err)
	}
	if key == key2 {
		t.Error("Two generated keys should not collide")
	}

	if _, err := GenerateRandomString("x_", 8, "rot13"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}
