package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// UserHandler serves author profiles and their account counters
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/me", h.GetProfile, auth)
	g.POST("/users/sync", h.SyncProfile, auth)
	g.GET("/users/:id", h.GetUser)
}

// GetUser returns another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	return h.profile(c, c.Param("id"))
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	return h.profile(c, caller.UserID)
}

// SyncProfile creates the caller's user record if needed and stores the
// profile sent by the client. Account counters are never touched here.
func (h *UserHandler) SyncProfile(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var req models.SyncProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	info := models.PersonalInfo{Fullname: req.Fullname, Username: req.Username, ProfileImg: req.ProfileImg}
	if _, err := h.users.EnsureUser(ctx, &models.User{ID: caller.UserID, PersonalInfo: models.PersonalInfo{Username: caller.UserID}}); err != nil {
		log.Errorf("[handlers] provision user %s: %v", caller.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if err := h.users.UpdateProfile(ctx, caller.UserID, info); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		log.Errorf("[handlers] update profile %s: %v", caller.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return h.profile(c, caller.UserID)
}

func (h *UserHandler) profile(c echo.Context, id string) error {
	user, err := h.users.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		log.Errorf("[handlers] load profile %s: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}
