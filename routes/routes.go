// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"brigh-server/commons"
	"brigh-server/handlers"
	"brigh-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering routes")

	e.GET("/health", handlers.HealthHandler)

	api_v1 := e.Group("/v1")
	api_v1.POST("/auth/signup", handlers.SignupHandler)
	api_v1.POST("/auth/login", handlers.LoginHandler)
	api_v1.POST("/auth/logout", handlers.LogoutHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.POST("/auth/api-keys", handlers.CreateAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.GET("/auth/api-keys", handlers.GetAllAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.DELETE("/auth/api-keys/:key_id", handlers.DeleteAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.POST("/auth/api-keys/:key_id/rotate", handlers.RotateAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.GET("/users/", handlers.GetUserHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.GET("/plans", handlers.GetPlansHandler)
	api_v1.GET("/subscriptions", handlers.GetSubscriptionHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.GET("/usage", handlers.GetUsageHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.POST("/billing/checkout", handlers.CreateCheckoutHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.GET("/billing/success", handlers.BillingSuccessHandler)
	api_v1.GET("/billing/cancel", handlers.BillingCancelHandler)
	api_v1.POST("/billing/webhook", handlers.StripeWebhookHandler)
	api_v1.GET("/ping", handlers.PingHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodAPIKey), middlewares.QuotaMiddleware)
	api_v1.GET("/event-logs", handlers.GetEventLogsHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))

	commons.Logger.Info("Routes registered successfully")
}
