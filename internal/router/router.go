package router

import (
	"github.com/anonto42/quillpress/backend/internal/handlers"
	"github.com/anonto42/quillpress/backend/internal/middleware"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// SetupRoutes registers every route under /api/v1 against the services.
// Verified callers get a user record on their first request.
func SetupRoutes(e *echo.Echo, svc *services.Services, verify middleware.TokenVerifier) {
	e.GET("/health", handlers.HealthCheck)

	verify = middleware.Provision(verify, svc.Users)
	api := e.Group("/api/v1")
	auth := middleware.RequireAuth(verify)
	optionalAuth := middleware.OptionalAuth(verify)

	handlers.NewBlogHandler(svc.Blogs).RegisterBlogRoutes(api, auth, optionalAuth)
	log.Debug("[router] blog routes configured")

	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(api, auth)
	log.Debug("[router] comment routes configured")

	handlers.NewLikeHandler(svc.Notifications).RegisterLikeRoutes(api, auth)
	log.Debug("[router] like routes configured")

	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api, auth)
	log.Debug("[router] notification routes configured")

	handlers.NewUserHandler(svc.Users).RegisterProfileRoutes(api, auth)
	log.Debug("[router] profile routes configured")

	log.Info("[router] all routes configured")
}
