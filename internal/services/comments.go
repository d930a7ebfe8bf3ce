package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/anonto42/quillpress/backend/internal/metrics"
	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

const maxCommentPage = 50

// CommentService owns the comment threads of blogs.
type CommentService struct {
	comments repositories.CommentRepository
	blogs    repositories.BlogRepository
	counters *Counters
	fanout   *NotificationService
	runner   *Runner
	pageSize int
	now      func() time.Time
}

// CreateCommentInput describes a new comment. ReplyingTo makes it a reply;
// NotificationID names the notification the user answered from, if any.
type CreateCommentInput struct {
	BlogID         string
	BlogAuthor     string
	Body           string
	CommentedBy    string
	ReplyingTo     string
	NotificationID string
}

// CreateComment stores a comment or reply and then attaches it to its blog,
// links it under its parent and notifies the blog or parent author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, invalid("write something to leave a comment")
	}
	if in.CommentedBy == "" {
		return nil, invalid("commenter is required")
	}

	blog, err := s.blogs.GetBlogByID(ctx, in.BlogID)
	if err != nil {
		return nil, notFound(err, "blog", in.BlogID)
	}
	if in.BlogAuthor != "" && in.BlogAuthor != blog.Author {
		return nil, invalid("blog %s is not written by %s", in.BlogID, in.BlogAuthor)
	}

	var parent *models.Comment
	if in.ReplyingTo != "" {
		parent, err = s.comments.GetCommentByID(ctx, in.ReplyingTo)
		if err != nil {
			return nil, notFound(err, "comment", in.ReplyingTo)
		}
		if parent.BlogID != blog.BlogID {
			return nil, &NotFoundError{Resource: "comment", ID: in.ReplyingTo}
		}
	}

	comment := &models.Comment{
		ID:          newID(),
		BlogID:      blog.BlogID,
		BlogAuthor:  blog.Author,
		Comment:     in.Body,
		CommentedBy: in.CommentedBy,
		CommentedAt: s.now(),
	}
	n := &models.Notification{
		Type:            models.NotificationComment,
		Blog:            blog.BlogID,
		NotificationFor: blog.Author,
		User:            in.CommentedBy,
		Comment:         &comment.ID,
	}
	if parent != nil {
		comment.Parent = &parent.ID
		comment.IsReply = true
		n.Type = models.NotificationReply
		n.NotificationFor = parent.CommentedBy
		n.RepliedOnComment = &parent.ID
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	steps := []Step{s.counters.CommentAttached(blog.BlogID, comment.ID, comment.IsRoot())}
	if parent != nil {
		steps = append(steps, s.link(parent.ID, comment.ID))
	}
	steps = append(steps, s.fanout.notify(n, "comment:"+comment.ID+":notify")...)
	if in.NotificationID != "" {
		steps = append(steps, s.fanout.recordReply(in.NotificationID, comment.ID))
	}
	s.runner.Run(ctx, steps...)

	return comment, nil
}

// DeleteComment removes a comment and its whole reply subtree and returns
// how many comments were removed. Every removed node is detached from its
// parent, its blog and its notifications on its own.
func (s *CommentService) DeleteComment(ctx context.Context, caller models.Caller, id string) (int, error) {
	target, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return 0, notFound(err, "comment", id)
	}
	if !canDeleteComment(caller, target) {
		return 0, forbidden("you can not delete this comment")
	}

	removed := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := target
		if cid != id {
			node, err = s.comments.GetCommentByID(ctx, cid)
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			if err != nil {
				return len(removed), err
			}
		}

		if err := s.comments.DeleteComment(ctx, cid); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return len(removed), err
		}
		removed[cid] = true

		var steps []Step
		if node.Parent != nil && !removed[*node.Parent] {
			steps = append(steps, s.unlink(*node.Parent, cid))
		}
		steps = append(steps, s.fanout.commentRemoved(cid)...)
		steps = append(steps, s.counters.CommentDetached(node.BlogID, cid, node.IsRoot()))
		s.runner.Run(ctx, steps...)

		children := slices.Clone([]string(node.Children))
		slices.Reverse(children)
		stack = append(stack, children...)
	}

	metrics.CommentsDeleted.Observe(float64(len(removed)))
	log.WithFields(log.Fields{"comment": id, "removed": len(removed)}).Debug("[comments] thread deleted")
	return len(removed), nil
}

// ListTopLevel returns the root comments of a blog, newest first.
// deletedDocCount is subtracted from skip like in Paginate.
func (s *CommentService) ListTopLevel(ctx context.Context, blogID string, skip, limit, deletedDocCount int) ([]models.Comment, error) {
	return s.comments.ListTopLevel(ctx, blogID, window(skip, deletedDocCount, s.limit(limit), maxCommentPage))
}

// ListReplies returns the direct replies of a comment, newest first.
func (s *CommentService) ListReplies(ctx context.Context, parentID string, skip, limit, deletedDocCount int) ([]models.Comment, error) {
	replies, err := s.comments.ListReplies(ctx, parentID, window(skip, deletedDocCount, s.limit(limit), maxCommentPage))
	if err != nil {
		return nil, notFound(err, "comment", parentID)
	}
	return replies, nil
}

func (s *CommentService) limit(limit int) int {
	if limit < 1 {
		return s.pageSize
	}
	return limit
}

// link and unlink keep both edges of a parent/child pair in step: the child
// carries parent and isReply from its insert, the parent carries children.
func (s *CommentService) link(parentID, childID string) Step {
	return Step{
		Name: "comment.link_child",
		Key:  "comment:" + childID + ":link",
		Run: func(ctx context.Context) error {
			return s.comments.AppendChild(ctx, parentID, childID)
		},
	}
}

func (s *CommentService) unlink(parentID, childID string) Step {
	return Step{
		Name: "comment.unlink_child",
		Key:  "comment:" + childID + ":unlink",
		Run: func(ctx context.Context) error {
			err := s.comments.RemoveChild(ctx, parentID, childID)
			if errors.Is(err, repositories.ErrNotFound) {
				// parent went away concurrently
				return nil
			}
			return err
		},
	}
}

func canDeleteComment(caller models.Caller, c *models.Comment) bool {
	return caller.IsAdmin || caller.UserID == c.CommentedBy || caller.UserID == c.BlogAuthor
}
