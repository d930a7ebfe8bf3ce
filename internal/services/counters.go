package services

import (
	"context"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
)

// Counters maintains the denormalized blog and user counters. Every
// adjustment is a single atomic increment on one document; the ones that
// follow a primary write are handed out as Steps for the Runner.
type Counters struct {
	blogs repositories.BlogRepository
	users repositories.UserRepository
}

// AdjustLikes moves a blog's total_likes by delta.
func (c *Counters) AdjustLikes(ctx context.Context, blogID string, delta int) error {
	return c.blogs.IncrementActivity(ctx, blogID, models.ActivityTotalLikes, delta)
}

// RecordRead bumps a blog's total_reads.
func (c *Counters) RecordRead(ctx context.Context, blogID string) error {
	return c.blogs.IncrementActivity(ctx, blogID, models.ActivityTotalReads, 1)
}

// CommentAttached counts a new comment on its blog.
func (c *Counters) CommentAttached(blogID, commentID string, root bool) Step {
	return Step{
		Name: "blog.attach_comment",
		Key:  "comment:" + commentID + ":attach",
		Run: func(ctx context.Context) error {
			return c.blogs.AttachComment(ctx, blogID, commentID, root)
		},
	}
}

// CommentDetached uncounts one deleted comment node.
func (c *Counters) CommentDetached(blogID, commentID string, root bool) Step {
	return Step{
		Name: "blog.detach_comment",
		Key:  "comment:" + commentID + ":detach",
		Run: func(ctx context.Context) error {
			return c.blogs.DetachComment(ctx, blogID, commentID, root)
		},
	}
}

// AuthorRead credits a read to the blog's author. Reads have no identity,
// so the step carries no ledger key.
func (c *Counters) AuthorRead(authorID string) Step {
	return Step{
		Name: "user.total_reads",
		Run: func(ctx context.Context) error {
			return c.users.IncrementAccount(ctx, authorID, models.AccountTotalReads, 1)
		},
	}
}

// PostPublished counts a blog's first publication for its author.
func (c *Counters) PostPublished(authorID, blogID string) Step {
	return Step{
		Name: "user.total_posts",
		Key:  "blog:" + blogID + ":published",
		Run: func(ctx context.Context) error {
			return c.users.IncrementAccount(ctx, authorID, models.AccountTotalPosts, 1)
		},
	}
}

// PostDeleted uncounts a deleted published blog.
func (c *Counters) PostDeleted(authorID, blogID string) Step {
	return Step{
		Name: "user.total_posts",
		Key:  "blog:" + blogID + ":deleted",
		Run: func(ctx context.Context) error {
			return c.users.IncrementAccount(ctx, authorID, models.AccountTotalPosts, -1)
		},
	}
}
