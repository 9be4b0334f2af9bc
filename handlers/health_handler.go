// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler godoc
// @Summary      Health check
// @Description  Liveness probe, requires no authentication.
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse "Service is up"
// @Router       /health [get]
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}
