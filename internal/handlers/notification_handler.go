package handlers

import (
	"net/http"

	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes; all of them need a caller
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, auth)
	g.GET("/notifications/unseen", h.HasUnseen, auth)
	g.GET("/notifications/count", h.CountNotifications, auth)
}

// GetNotifications returns one page of the caller's notifications and marks
// them seen
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	notifications, err := h.notifications.ListNotifications(c.Request().Context(), caller.UserID, services.NotificationQuery{
		Page:            queryInt(c, "page"),
		Filter:          c.QueryParam("filter"),
		DeletedDocCount: queryInt(c, "deleted_doc_count"),
	})
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"notifications": notifications})
}

// HasUnseen reports whether the caller has unseen notifications
func (h *NotificationHandler) HasUnseen(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	unseen, err := h.notifications.HasUnseen(c.Request().Context(), caller.UserID)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"new_notification_available": unseen})
}

// CountNotifications returns the number of the caller's notifications for a filter
func (h *NotificationHandler) CountNotifications(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.CountNotifications(c.Request().Context(), caller.UserID, c.QueryParam("filter"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"totalDocs": count})
}
