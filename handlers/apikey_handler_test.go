// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, maxKeys uint) models.User {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.Conn = conn

	limit := uint(25)
	plan := models.Plan{
		Name:              models.FreePlan,
		Currency:          "USD",
		MaxRequestsPerDay: &limit,
		MaxAPIKeys:        &maxKeys,
	}
	if err := conn.Create(&plan).Error; err != nil {
		t.Fatalf("Failed to seed plan: %v", err)
	}

	user := models.User{Email: "keys@example.com", Password: "irrelevant"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	subscription := models.Subscription{
		UserID:    user.ID,
		PlanID:    plan.ID,
		Status:    models.ActiveSubscription,
		StartedAt: time.Now(),
	}
	if err := conn.Create(&subscription).Error; err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	return user
}

func sessionContext(e *echo.Echo, user models.User, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session", models.Session{UserID: user.ID})
	c.Set("auth_method", middlewares.AuthMethodSession)
	return c, rec
}

func TestCreateAPIKeyShowsPlaintextOnce(t *testing.T) {
	user := setupTestDB(t, 3)
	e := echo.New()

	c, rec := sessionContext(e, user, http.MethodPost, "/v1/auth/api-keys", `{"name": "ci key"}`)
	if err := CreateAPIKeyHandler(c); err != nil {
		t.Fatalf("CreateAPIKeyHandler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp CreateAPIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if !strings.HasPrefix(resp.APIKey, "ak_") {
		t.Errorf("Expected ak_ prefix, got %s", resp.APIKey)
	}
	if len(resp.APIKey) != 99 {
		t.Errorf("Expected 99-char key (35-char ID + 64-char secret), got %d", len(resp.APIKey))
	}
	if !strings.HasPrefix(resp.APIKey, resp.KeyID) {
		t.Error("Plaintext key must start with the key ID")
	}

	var stored models.APIKey
	if err := db.Conn.Where("key_id = ?", resp.KeyID).First(&stored).Error; err != nil {
		t.Fatalf("Failed to fetch stored key: %v", err)
	}
	if stored.HashedKey == resp.APIKey {
		t.Error("Stored key must be a hash, not the plaintext")
	}
	if strings.Contains(stored.HashedKey, resp.APIKey[len(resp.KeyID):]) {
		t.Error("Stored hash must not contain the secret tail")
	}
}

func TestCreateAPIKeyEnforcesPlanCeiling(t *testing.T) {
	user := setupTestDB(t, 1)
	e := echo.New()

	c, rec := sessionContext(e, user, http.MethodPost, "/v1/auth/api-keys", `{"name": "first"}`)
	if err := CreateAPIKeyHandler(c); err != nil {
		t.Fatalf("First key creation failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for first key, got %d", rec.Code)
	}

	c, _ = sessionContext(e, user, http.MethodPost, "/v1/auth/api-keys", `{"name": "second"}`)
	err := CreateAPIKeyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 over the key ceiling, got %v", err)
	}
}

func TestCreateAPIKeyRejectsPastExpiry(t *testing.T) {
	user := setupTestDB(t, 3)
	e := echo.New()

	c, _ := sessionContext(e, user, http.MethodPost, "/v1/auth/api-keys", `{"name": "stale", "expires_at": "2020-01-01"}`)
	err := CreateAPIKeyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a past expiry date, got %v", err)
	}
}

func TestDeleteAPIKeyRevokes(t *testing.T) {
	user := setupTestDB(t, 3)
	e := echo.New()

	plaintext, apiKey, err := issueAPIKey(user, "doomed", nil)
	if err != nil {
		t.Fatalf("issueAPIKey failed: %v", err)
	}
	if plaintext == "" {
		t.Fatal("Expected a plaintext key")
	}

	c, rec := sessionContext(e, user, http.MethodDelete, "/", "")
	c.SetPath("/v1/auth/api-keys/:key_id")
	c.SetParamNames("key_id")
	c.SetParamValues(apiKey.KeyID)
	if err := DeleteAPIKeyHandler(c); err != nil {
		t.Fatalf("DeleteAPIKeyHandler failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	// Revocation is a soft delete, the key no longer resolves.
	var count int64
	db.Conn.Model(&models.APIKey{}).Where("key_id = ?", apiKey.KeyID).Count(&count)
	if count != 0 {
		t.Errorf("Expected revoked key to be invisible to lookups, got %d rows", count)
	}

	var revoked int64
	db.Conn.Model(&models.EventLog{}).Where("key_id = ?", apiKey.KeyID).Count(&revoked)
	if revoked != 1 {
		t.Errorf("Expected 1 revocation event log, got %d", revoked)
	}
}

func TestDeleteAPIKeyNotFound(t *testing.T) {
	user := setupTestDB(t, 3)
	e := echo.New()

	c, _ := sessionContext(e, user, http.MethodDelete, "/", "")
	c.SetPath("/v1/auth/api-keys/:key_id")
	c.SetParamNames("key_id")
	c.SetParamValues("ak_ffffffffffffffffffffffffffffffff")
	err := DeleteAPIKeyHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown key, got %v", err)
	}
}

func TestRotateAPIKeyIssuesReplacement(t *testing.T) {
	user := setupTestDB(t, 3)
	e := echo.New()

	_, apiKey, err := issueAPIKey(user, "rotating", nil)
	if err != nil {
		t.Fatalf("issueAPIKey failed: %v", err)
	}

	c, rec := sessionContext(e, user, http.MethodPost, "/", "")
	c.SetPath("/v1/auth/api-keys/:key_id/rotate")
	c.SetParamNames("key_id")
	c.SetParamValues(apiKey.KeyID)
	if err := RotateAPIKeyHandler(c); err != nil {
		t.Fatalf("RotateAPIKeyHandler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}

	var resp CreateAPIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.KeyID == apiKey.KeyID {
		t.Error("Rotation must issue a new key ID")
	}
	if resp.Name != "rotating" {
		t.Errorf("Expected the replacement to keep the name, got %s", resp.Name)
	}

	var count int64
	db.Conn.Model(&models.APIKey{}).Where("key_id = ?", apiKey.KeyID).Count(&count)
	if count != 0 {
		t.Error("Expected the old key to be revoked after rotation")
	}
}
