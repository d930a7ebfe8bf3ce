package handlers

import (
	"net/http"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	notifications *services.NotificationService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(notifications *services.NotificationService) *LikeHandler {
	return &LikeHandler{notifications: notifications}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/blogs/:blog_id/like", h.ToggleLike, auth)
	g.GET("/blogs/:blog_id/like", h.HasLiked, auth)
}

// ToggleLike likes or unlikes a blog depending on the state the client shows
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	result, err := h.notifications.ToggleLike(c.Request().Context(), caller, c.Param("blog_id"), req.IsLikedByUser)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, result)
}

// HasLiked reports whether the caller has liked the blog
func (h *LikeHandler) HasLiked(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	liked, err := h.notifications.HasLiked(c.Request().Context(), c.Param("blog_id"), caller.UserID)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, services.LikeResult{Liked: liked})
}
