package handlers

import (
	"net/http"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/blogs/:blog_id/comments", h.CreateComment, auth)
	g.GET("/blogs/:blog_id/comments", h.ListComments)
	g.GET("/comments/:id/replies", h.ListReplies)
	g.DELETE("/comments/:id", h.DeleteComment, auth)
}

// CreateComment adds a comment, or a reply when replying_to is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.CreateComment(c.Request().Context(), services.CreateCommentInput{
		BlogID:         c.Param("blog_id"),
		BlogAuthor:     req.BlogAuthor,
		Body:           req.Comment,
		CommentedBy:    caller.UserID,
		ReplyingTo:     req.ReplyingTo,
		NotificationID: req.NotificationID,
	})
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusCreated, echo.Map{"comment": comment})
}

// ListComments retrieves the top-level comments of a blog, newest first
func (h *CommentHandler) ListComments(c echo.Context) error {
	comments, err := h.comments.ListTopLevel(c.Request().Context(), c.Param("blog_id"),
		queryInt(c, "skip"), queryInt(c, "limit"), queryInt(c, "deleted_doc_count"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"comments": comments})
}

// ListReplies retrieves the direct replies of a comment
func (h *CommentHandler) ListReplies(c echo.Context) error {
	replies, err := h.comments.ListReplies(c.Request().Context(), c.Param("id"),
		queryInt(c, "skip"), queryInt(c, "limit"), queryInt(c, "deleted_doc_count"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"replies": replies})
}

// DeleteComment removes a comment together with all of its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	removed, err := h.comments.DeleteComment(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": removed})
}
