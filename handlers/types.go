// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model SignupRequest
type SignupRequest struct {
	// User's email address
	// required: true
	Email string `json:"email" example:"user@example.com"`
	// User's password
	// required: true
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
	// User's password
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	// Authentication session token
	// Should be used in the Authorization header as a Bearer token.
	SessionToken string `json:"session_token" example:"sample_session_token"`
	// Message indicating successful operation
	Message string `json:"message" example:"Operation successful"`
}

// swagger:model GenericResponse
type GenericResponse struct {
	// Message indicating the result of the operation
	Message string `json:"message"`
}

// swagger:model HealthResponse
type HealthResponse struct {
	OK bool `json:"ok" example:"true"`
}

// swagger:model GetUserResponse
type GetUserResponse struct {
	// Unique identifier for the account
	AccountID string `json:"account_id" example:"acct_1234567890"`
	// Email address associated with the account
	Email string `json:"email" example:"user@example.com"`
	// Account's subscription plan
	Plan string `json:"plan" example:"FREE"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"User retrieved successfully"`
}

// swagger:model PaginationDetails
type PaginationDetails struct {
	// Current page number
	Page int `json:"page"`
	// Page size
	PageSize int `json:"page_size"`
	// Total number of items
	Total int64 `json:"total"`
	// Total number of pages
	TotalPages int `json:"total_pages"`
}

// swagger:model CreateAPIKeyRequest
type CreateAPIKeyRequest struct {
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Expiration date for the API key (optional)
	ExpiresAt *string `json:"expires_at" example:"2027-12-31"`
}

// swagger:model CreateAPIKeyResponse
type CreateAPIKeyResponse struct {
	// The full API key, shown exactly once
	APIKey string `json:"api_key" example:"ak_jkdfkjdfkdfjkdlklklkllklklklklklklklklklklkl"`
	// Key ID of the created API key
	KeyID string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Timestamp of when the API key was created
	CreatedAt string `json:"created_at" example:"2026-01-01T12:00:00Z"`
	// Expiration date for the API key
	ExpiresAt *string `json:"expires_at" example:"2027-12-31"`
	// Message indicating successful creation
	Message string `json:"message" example:"API key created successfully"`
}

// swagger:model APIKeyDetails
type APIKeyDetails struct {
	// Key ID of the API key
	KeyID string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Timestamp of when the API key was created
	CreatedAt string `json:"created_at" example:"2026-01-01T12:00:00Z"`
	// Last used timestamp of the API key
	LastUsedAt *string `json:"last_used_at" example:"2026-01-01T12:00:00Z"`
	// Expiration date for the API key
	ExpiresAt *string `json:"expires_at" example:"2027-12-31"`
}

// swagger:model APIKeyListResponse
type APIKeyListResponse struct {
	// List of API keys
	Data []APIKeyDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"API keys retrieved successfully"`
}

// swagger:model PlanDetails
type PlanDetails struct {
	// Plan ID
	ID uint `json:"id" example:"1"`
	// Plan name
	Name string `json:"name" example:"FREE"`
	// Plan price in cents
	Price uint `json:"price" example:"0"`
	// Currency for the plan price
	Currency string `json:"currency" example:"USD"`
	// Maximum requests per day (null means unlimited)
	MaxRequestsPerDay *uint `json:"max_requests_per_day" example:"25"`
	// Maximum API keys allowed (null means unlimited)
	MaxAPIKeys *uint `json:"max_api_keys" example:"3"`
}

// swagger:model PlanOption
type PlanOption struct {
	// Plan ID
	ID uint `json:"id" example:"1"`
	// Plan name
	Name string `json:"name" example:"PRO"`
	// Monthly price in cents
	Price uint `json:"price" example:"900"`
	// Currency code
	Currency string `json:"currency" example:"USD"`
	// Whether this is the recommended plan
	Recommended bool `json:"recommended" example:"true"`
	// List of plan features
	Features []string `json:"features" example:"[\"10000 requests/day\", \"Unlimited API keys\"]"`
}

// swagger:model GetPlansResponse
type GetPlansResponse struct {
	// Operation success message
	Message string `json:"message" example:"Plans retrieved successfully"`
	// List of available plans
	Plans []PlanOption `json:"plans"`
}

// swagger:model GetSubscriptionResponse
type GetSubscriptionResponse struct {
	// Message indicating successful operation
	Message string `json:"message" example:"Subscription details retrieved successfully"`
	// Subscription ID
	SubscriptionID string `json:"subscription_id" example:"sub_1234567890"`
	// Subscription status
	Status string `json:"status" example:"ACTIVE"`
	// Date when subscription started
	StartedAt string `json:"started_at" example:"2026-01-01T00:00:00Z"`
	// Plan details
	Plan PlanDetails `json:"plan"`
	// Date when subscription was last updated
	UpdatedAt string `json:"updated_at" example:"2026-01-01T00:00:00Z"`
}

// swagger:model KeyUsageDetails
type KeyUsageDetails struct {
	// Key ID
	KeyID string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Requests recorded today
	UsedToday int64 `json:"used_today" example:"12"`
	// Daily ceiling (null means unlimited)
	Limit *uint `json:"limit" example:"25"`
	// Requests remaining today (null means unlimited)
	Remaining *int64 `json:"remaining" example:"13"`
}

// swagger:model GetUsageResponse
type GetUsageResponse struct {
	// UTC day the counters belong to
	Day string `json:"day" example:"2026-08-23"`
	// Plan governing the ceilings
	Plan string `json:"plan" example:"FREE"`
	// Per-key usage
	Keys []KeyUsageDetails `json:"keys"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Usage retrieved successfully"`
}

// swagger:model CheckoutResponse
type CheckoutResponse struct {
	// Stripe Checkout URL to redirect the user to
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_123"`
	// Stripe Checkout session ID
	SessionID string `json:"session_id" example:"cs_test_123"`
	// Message indicating successful creation
	Message string `json:"message" example:"Checkout session created successfully"`
}

// swagger:model PingResponse
type PingResponse struct {
	// Pong
	Message string `json:"message" example:"pong"`
	// Plan governing the daily ceiling
	Plan string `json:"plan" example:"FREE"`
	// Requests recorded today, including this one
	UsedToday int64 `json:"used_today" example:"12"`
	// Daily ceiling (null means unlimited)
	LimitToday *uint `json:"limit_today" example:"25"`
}

// swagger:model EventLogDetails
type EventLogDetails struct {
	// Event ID
	EID string `json:"eid" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Event category
	Category *string `json:"category" example:"PAYMENT"`
	// Event status
	Status *string `json:"status" example:"PROCESSED"`
	// API key ID associated with the event
	KeyID *string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Event description
	Description *string `json:"description" example:"Subscription activated"`
	// Timestamp of when the event was created
	CreatedAt string `json:"created_at" example:"2026-01-01T12:00:00Z"`
}

// swagger:model EventLogListResponse
type EventLogListResponse struct {
	// List of event logs
	Data []EventLogDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Event logs retrieved successfully"`
}
