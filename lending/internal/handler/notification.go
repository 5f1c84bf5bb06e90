package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ListNotifications godoc
// @Summary  Notifications of the caller, newest first
// @Tags     notifications
// @Produce  json
// @Param    isRead  query  bool    false  "read flag"
// @Param    type    query  string  false  "notification type"
// @Success  200  {array}  model.Notification
// @Router   /notifications [get]
func (h *Handler) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := auth.UserID(ctx)

	var filter model.NotificationFilter
	if v := c.QueryParam("isRead"); v != "" {
		isRead, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("isRead is invalid"))
		}
		filter.IsRead = &isRead
	}
	if v := c.QueryParam("type"); v != "" {
		typ := model.NotificationType(v)
		filter.Type = &typ
	}

	items, err := h.notificationSvc.List(ctx, userID, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// UnreadCount godoc
// @Summary  Number of unread notifications of the caller
// @Tags     notifications
// @Produce  json
// @Success  200  {object}  map[string]int
// @Router   /notifications/unread-count [get]
func (h *Handler) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := auth.UserID(ctx)
	n, err := h.notificationSvc.UnreadCount(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// MarkNotificationRead godoc
// @Summary  Mark a notification of the caller as read
// @Tags     notifications
// @Param    id  path  string  true  "notification id"
// @Success  204
// @Failure  404  {object}  echo.HTTPError
// @Router   /notifications/{id}/read [patch]
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID, _ := auth.UserID(ctx)
	if err = h.notificationSvc.MarkAsRead(ctx, id, userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Scan godoc
// @Summary  Run an overdue scan now
// @Tags     overdue
// @Produce  json
// @Success  200  {object}  model.ScanReport
// @Failure  403  {object}  echo.HTTPError
// @Router   /overdue/scan [post]
func (h *Handler) Scan(c echo.Context) error {
	ctx := c.Request().Context()
	if !auth.IsAdmin(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "admin role required")
	}
	report, err := h.scanner.Scan(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
