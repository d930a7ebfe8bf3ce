package handlers

import (
	"net/http"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BlogHandler handles HTTP requests related to blogs
type BlogHandler struct {
	blogs *services.BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// RegisterBlogRoutes registers blog routes. auth rejects anonymous callers,
// optionalAuth only identifies them.
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.POST("/blogs", h.PublishBlog, auth)
	g.GET("/blogs", h.ListLatestBlogs)
	g.GET("/blogs/count", h.CountLatestBlogs)
	g.GET("/blogs/:blog_id", h.GetBlog, optionalAuth)
	g.DELETE("/blogs/:blog_id", h.DeleteBlog, auth)
	g.GET("/me/blogs", h.ListUserBlogs, auth)
	g.GET("/me/blogs/count", h.CountUserBlogs, auth)
}

// PublishBlog creates a blog, or edits it when the body carries its id
func (h *BlogHandler) PublishBlog(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var req models.PublishBlogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blog, err := h.blogs.PublishBlog(c.Request().Context(), caller, services.PublishBlogInput{
		BlogID:  req.BlogID,
		Title:   req.Title,
		Banner:  req.Banner,
		Des:     req.Des,
		Content: req.Content,
		Tags:    req.Tags,
		Draft:   req.Draft,
	})
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusCreated, echo.Map{"id": blog.BlogID, "blog": blog})
}

// GetBlog retrieves a blog by ID and counts the read unless mode=edit
func (h *BlogHandler) GetBlog(c echo.Context) error {
	caller, _ := currentCaller(c)
	blog, err := h.blogs.GetBlog(c.Request().Context(), caller, c.Param("blog_id"), services.GetBlogOptions{
		Draft: queryBool(c, "draft"),
		Mode:  c.QueryParam("mode"),
	})
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"blog": blog})
}

// ListLatestBlogs retrieves one page of published blogs, newest first
func (h *BlogHandler) ListLatestBlogs(c echo.Context) error {
	blogs, err := h.blogs.ListLatestBlogs(c.Request().Context(), queryInt(c, "page"), queryInt(c, "deleted_doc_count"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"blogs": blogs})
}

// CountLatestBlogs returns the number of published blogs
func (h *BlogHandler) CountLatestBlogs(c echo.Context) error {
	count, err := h.blogs.CountLatestBlogs(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"totalDocs": count})
}

// ListUserBlogs lists the caller's own published blogs or drafts
func (h *BlogHandler) ListUserBlogs(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	blogs, err := h.blogs.ListUserBlogs(c.Request().Context(), caller.UserID, services.UserBlogQuery{
		Page:            queryInt(c, "page"),
		Draft:           queryBool(c, "draft"),
		DeletedDocCount: queryInt(c, "deleted_doc_count"),
	})
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"blogs": blogs})
}

// CountUserBlogs returns how many blogs or drafts the caller has
func (h *BlogHandler) CountUserBlogs(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	count, err := h.blogs.CountUserBlogs(c.Request().Context(), caller.UserID, queryBool(c, "draft"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"totalDocs": count})
}

// DeleteBlog deletes a blog with its comments and notifications
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.blogs.DeleteBlog(c.Request().Context(), caller, c.Param("blog_id")); err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"status": "done"})
}
