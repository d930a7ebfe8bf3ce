package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/quillpress/backend/internal/middleware"
	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// serviceError maps a service error onto its HTTP status.
func serviceError(err error) error {
	var (
		validationErr *services.ValidationError
		permissionErr *services.PermissionError
		notFoundErr   *services.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &permissionErr):
		return echo.NewHTTPError(http.StatusForbidden, permissionErr.Error())
	case errors.As(err, &notFoundErr):
		return echo.NewHTTPError(http.StatusNotFound, notFoundErr.Error())
	default:
		log.Errorf("[handlers] unexpected error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func currentCaller(c echo.Context) (models.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || caller.UserID == "" {
		return models.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return caller, nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
