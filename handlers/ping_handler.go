// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"brigh-server/models"
	"brigh-server/quota"

	"github.com/labstack/echo/v4"
)

// PingHandler godoc
// @Summary      Metered ping
// @Description  Minimal metered endpoint. Each successful call consumes one unit of the key's daily quota.
// @Tags         ping
// @Produce      json
// @Security     ApiKeyAuth
// @Param        Authorization  header  string  true  "API key. Replace <your_api_key> with a valid key."  default(Bearer <your_api_key>)
// @Success      200 {object} PingResponse "Pong"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      429 {object} echo.HTTPError "Daily quota exceeded"
// @Router       /v1/ping [get]
func PingHandler(c echo.Context) error {
	decision, ok := c.Get("quota").(quota.Decision)
	if !ok {
		c.Logger().Error("Quota decision not found in context.")
		return echo.ErrInternalServerError
	}

	plan, ok := c.Get("plan").(models.Plan)
	if !ok {
		c.Logger().Error("Plan not found in context.")
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, PingResponse{
		Message:    "pong",
		Plan:       string(plan.Name),
		UsedToday:  decision.Used,
		LimitToday: decision.Limit,
	})
}
