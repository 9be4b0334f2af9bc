// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
)

// GetUserHandler godoc
// @Summary      Get account details
// @Description  Retrieves the authenticated account's details, including its current plan.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} GetUserResponse "Account details retrieved successfully"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/users/ [get]
func GetUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	plan := string(models.FreePlan)
	subscription := models.Subscription{}
	if err := db.Conn.Preload("Plan").Where("user_id = ?", user.ID).First(&subscription).Error; err == nil {
		plan = string(subscription.Plan.Name)
	}

	return c.JSON(http.StatusOK, GetUserResponse{
		AccountID: user.AccountID,
		Email:     user.Email,
		Plan:      plan,
		Message:   "User retrieved successfully",
	})
}
