// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"

	"brigh-server/db"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
)

// GetPlansHandler godoc
// @Summary      Get available plans
// @Description  Retrieves all available subscription plans for display to clients.
// @Tags         plans
// @Accept       json
// @Produce      json
// @Success      200 {object}  GetPlansResponse "Plans retrieved successfully"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/plans [get]
func GetPlansHandler(c echo.Context) error {
	logger := c.Logger()

	var plans []models.Plan
	result := db.Conn.Find(&plans)
	if result.Error != nil {
		logger.Error("Failed to retrieve plans:", result.Error)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve plans",
		}
	}

	var planOptions []PlanOption
	for _, plan := range plans {
		var features []string
		switch plan.Name {
		case models.FreePlan:
			features = []string{
				fmt.Sprintf("%s requests/day", limitLabel(plan.MaxRequestsPerDay)),
				fmt.Sprintf("%s API keys", limitLabel(plan.MaxAPIKeys)),
				"Community support",
			}
		case models.ProPlan:
			features = []string{
				fmt.Sprintf("%s requests/day", limitLabel(plan.MaxRequestsPerDay)),
				fmt.Sprintf("%s API keys", limitLabel(plan.MaxAPIKeys)),
				"Priority support",
			}
		default:
			features = []string{}
		}

		planOptions = append(planOptions, PlanOption{
			ID:          plan.ID,
			Name:        string(plan.Name),
			Price:       plan.Price,
			Currency:    plan.Currency,
			Recommended: plan.Name == models.ProPlan,
			Features:    features,
		})
	}

	return c.JSON(http.StatusOK, GetPlansResponse{
		Message: "Plans retrieved successfully",
		Plans:   planOptions,
	})
}

func limitLabel(limit *uint) string {
	if limit == nil {
		return "Unlimited"
	}
	return fmt.Sprintf("%d", *limit)
}
