// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"brigh-server/crypto"
	"brigh-server/db"
	"brigh-server/events"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// issueAPIKey generates a fresh key for the user and persists its hash.
// The returned plaintext is KeyID + secret tail and is never stored.
func issueAPIKey(user models.User, name string, expiresAt *time.Time) (plaintext string, apiKey models.APIKey, err error) {
	keyID, err := crypto.GenerateRandomString("ak_", 16, "hex")
	if err != nil {
		return "", models.APIKey{}, err
	}

	secret, err := crypto.GenerateRandomString("", 32, "hex")
	if err != nil {
		return "", models.APIKey{}, err
	}

	plaintext = keyID + secret

	newCrypto := crypto.NewCrypto()
	hashedKey, err := newCrypto.HashSecret(plaintext)
	if err != nil {
		return "", models.APIKey{}, err
	}

	apiKey = models.APIKey{
		KeyID:     keyID,
		HashedKey: hashedKey,
		Name:      name,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
	}
	if err := db.Conn.Create(&apiKey).Error; err != nil {
		return "", models.APIKey{}, err
	}
	return plaintext, apiKey, nil
}

// CreateAPIKeyHandler godoc
// @Summary      Create an API key
// @Description  Issues a new API key for the authenticated account. The full key is returned exactly once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        createAPIKeyRequest  body  CreateAPIKeyRequest  true  "Create API key request payload"
// @Success      201 {object} CreateAPIKeyResponse "API key created successfully"
// @Failure      400 {object} echo.HTTPError "Bad request"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      403 {object} echo.HTTPError "Plan API key ceiling reached"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/auth/api-keys [post]
func CreateAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid create API key request payload:", err)
		return echo.ErrBadRequest
	}

	if req.Name == "" {
		logger.Error("API key name is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "name field is required",
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			logger.Error("Invalid expires_at date:", err)
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "expires_at must be a YYYY-MM-DD date",
			}
		}
		if parsed.Before(time.Now()) {
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "expires_at must be in the future",
			}
		}
		expiresAt = &parsed
	}

	subscription := models.Subscription{}
	if err := db.Conn.Preload("Plan").Where("user_id = ?", user.ID).First(&subscription).Error; err != nil {
		logger.Errorf("Failed to fetch subscription: %v", err)
		return echo.ErrInternalServerError
	}

	if subscription.Plan.MaxAPIKeys != nil {
		var keyCount int64
		if err := db.Conn.Model(&models.APIKey{}).Where("user_id = ?", user.ID).Count(&keyCount).Error; err != nil {
			logger.Errorf("Failed to count API keys: %v", err)
			return echo.ErrInternalServerError
		}
		if keyCount >= int64(*subscription.Plan.MaxAPIKeys) {
			logger.Warnf("API key ceiling reached for user %d", user.ID)
			return &echo.HTTPError{
				Code:    http.StatusForbidden,
				Message: fmt.Sprintf("Your plan allows at most %d API keys. Upgrade to PRO for more.", *subscription.Plan.MaxAPIKeys),
			}
		}
	}

	plaintext, apiKey, err := issueAPIKey(*user, req.Name, expiresAt)
	if err != nil {
		logger.Errorf("Failed to issue API key: %v", err)
		return echo.ErrInternalServerError
	}

	var expiresAtStr *string
	if apiKey.ExpiresAt != nil {
		formatted := apiKey.ExpiresAt.Format("2006-01-02")
		expiresAtStr = &formatted
	}

	logger.Infof("API key created for user %d", user.ID)
	return c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKey:    plaintext,
		KeyID:     apiKey.KeyID,
		Name:      apiKey.Name,
		CreatedAt: apiKey.CreatedAt.Format(time.RFC3339),
		ExpiresAt: expiresAtStr,
		Message:   "API key created successfully. Store it now, it will not be shown again.",
	})
}

// GetAllAPIKeyHandler godoc
// @Summary      List API keys
// @Description  Retrieves all API keys for the authenticated account. Secrets are never returned.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page     query   int     false  "Page number (default 1)"
// @Param        page_size query  int     false  "Page size (default 10, max 100)"
// @Success      200 {object} APIKeyListResponse "Paginated list of API keys"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/auth/api-keys [get]
func GetAllAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	page := 1
	pageSize := 10
	if p := c.QueryParam("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}
	if ps := c.QueryParam("page_size"); ps != "" {
		if _, err := fmt.Sscanf(ps, "%d", &pageSize); err != nil || pageSize < 1 {
			pageSize = 10
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := db.Conn.Model(&models.APIKey{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		logger.Errorf("Failed to count API keys: %v", err)
		return echo.ErrInternalServerError
	}

	offset := (page - 1) * pageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var apiKeys []models.APIKey
	if err := db.Conn.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&apiKeys).Error; err != nil {
		logger.Errorf("Failed to fetch API keys: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]APIKeyDetails, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		var lastUsedAtStr, expiresAtStr *string
		if apiKey.LastUsedAt != nil {
			formatted := apiKey.LastUsedAt.Format(time.RFC3339)
			lastUsedAtStr = &formatted
		}
		if apiKey.ExpiresAt != nil {
			formatted := apiKey.ExpiresAt.Format("2006-01-02")
			expiresAtStr = &formatted
		}
		details = append(details, APIKeyDetails{
			KeyID:      apiKey.KeyID,
			Name:       apiKey.Name,
			CreatedAt:  apiKey.CreatedAt.Format(time.RFC3339),
			LastUsedAt: lastUsedAtStr,
			ExpiresAt:  expiresAtStr,
		})
	}

	return c.JSON(http.StatusOK, APIKeyListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "API keys retrieved successfully",
	})
}

// DeleteAPIKeyHandler godoc
// @Summary      Revoke an API key
// @Description  Revokes an API key. Subsequent requests with the key are rejected regardless of remaining quota.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        key_id  path  string  true  "Key ID to revoke"
// @Success      204 "API key revoked"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      404 {object} echo.HTTPError "Not found"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/auth/api-keys/{key_id} [delete]
func DeleteAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	keyID := c.Param("key_id")
	apiKey := models.APIKey{}
	if err := db.Conn.Where("key_id = ? AND user_id = ?", keyID, user.ID).First(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("API key not found.")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "API key not found",
			}
		}
		logger.Errorf("Failed to fetch API key: %v", err)
		return echo.ErrInternalServerError
	}

	if err := revokeAPIKey(c, *user, apiKey); err != nil {
		return echo.ErrInternalServerError
	}

	logger.Infof("API key %s revoked", apiKey.KeyID)
	return c.NoContent(http.StatusNoContent)
}

// RotateAPIKeyHandler godoc
// @Summary      Rotate an API key
// @Description  Revokes an API key and issues a replacement with the same name. The new key is returned exactly once.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        key_id  path  string  true  "Key ID to rotate"
// @Success      201 {object} CreateAPIKeyResponse "Replacement API key created"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      404 {object} echo.HTTPError "Not found"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/auth/api-keys/{key_id}/rotate [post]
func RotateAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	keyID := c.Param("key_id")
	apiKey := models.APIKey{}
	if err := db.Conn.Where("key_id = ? AND user_id = ?", keyID, user.ID).First(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("API key not found.")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "API key not found",
			}
		}
		logger.Errorf("Failed to fetch API key: %v", err)
		return echo.ErrInternalServerError
	}

	if err := revokeAPIKey(c, *user, apiKey); err != nil {
		return echo.ErrInternalServerError
	}

	plaintext, newKey, err := issueAPIKey(*user, apiKey.Name, apiKey.ExpiresAt)
	if err != nil {
		logger.Errorf("Failed to issue replacement API key: %v", err)
		return echo.ErrInternalServerError
	}

	var expiresAtStr *string
	if newKey.ExpiresAt != nil {
		formatted := newKey.ExpiresAt.Format("2006-01-02")
		expiresAtStr = &formatted
	}

	logger.Infof("API key %s rotated to %s", apiKey.KeyID, newKey.KeyID)
	return c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKey:    plaintext,
		KeyID:     newKey.KeyID,
		Name:      newKey.Name,
		CreatedAt: newKey.CreatedAt.Format(time.RFC3339),
		ExpiresAt: expiresAtStr,
		Message:   "API key rotated successfully. Store the new key now, it will not be shown again.",
	})
}

func revokeAPIKey(c echo.Context, user models.User, apiKey models.APIKey) error {
	logger := c.Logger()

	if err := db.Conn.Delete(&apiKey).Error; err != nil {
		logger.Errorf("Failed to revoke API key: %v", err)
		return err
	}

	status := models.Processed
	category := models.Auth
	description := "API key revoked"
	if err := db.Conn.Create(&models.EventLog{
		Category:    &category,
		Status:      &status,
		KeyID:       &apiKey.KeyID,
		Description: &description,
		UserID:      user.ID,
	}).Error; err != nil {
		logger.Error("Failed to record revocation event log: ", err)
	}

	if err := events.Publish(events.Message{
		Event:     events.APIKeyRevoked,
		AccountID: user.AccountID,
		KeyID:     apiKey.KeyID,
	}); err != nil {
		logger.Error("Failed to publish revocation event: ", err)
	}
	return nil
}
