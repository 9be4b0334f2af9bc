// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"brigh-server/db"
	"brigh-server/middlewares"
	"brigh-server/models"

	"github.com/labstack/echo/v4"
)

// GetEventLogsHandler godoc
// @Summary      List event logs
// @Description  Retrieves the authenticated account's event logs, newest first. Supports filtering by category.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        page_size query  int     false  "Page size (default 10, max 100)"
// @Param        category  query  string  false  "Filter by category (PAYMENT, QUOTA, AUTH)"
// @Success      200 {object} EventLogListResponse "Paginated list of event logs"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/event-logs [get]
func GetEventLogsHandler(c echo.Context) error {
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

	query := db.Conn.Model(&models.EventLog{}).Where("user_id = ?", user.ID)
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("Failed to count event logs: %v", err)
		return echo.ErrInternalServerError
	}

	offset := (page - 1) * pageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var eventLogs []models.EventLog
	if err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&eventLogs).Error; err != nil {
		logger.Errorf("Failed to fetch event logs: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]EventLogDetails, 0, len(eventLogs))
	for _, eventLog := range eventLogs {
		var category, status *string
		if eventLog.Category != nil {
			s := string(*eventLog.Category)
			category = &s
		}
		if eventLog.Status != nil {
			s := string(*eventLog.Status)
			status = &s
		}
		details = append(details, EventLogDetails{
			EID:         eventLog.EID.String(),
			Category:    category,
			Status:      status,
			KeyID:       eventLog.KeyID,
			Description: eventLog.Description,
			CreatedAt:   eventLog.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, EventLogListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "Event logs retrieved successfully",
	})
}
