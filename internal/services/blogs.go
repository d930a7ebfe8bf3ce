package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	maxDescriptionLength = 200
	maxTags              = 10
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// BlogService manages blog documents and the counters that depend on them.
type BlogService struct {
	blogs         repositories.BlogRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	counters      *Counters
	runner        *Runner
	pageSize      int
	now           func() time.Time
}

// PublishBlogInput creates a blog, or edits the one named by BlogID.
type PublishBlogInput struct {
	BlogID  string
	Title   string
	Banner  string
	Des     string
	Content string
	Tags    []string
	Draft   bool
}

// GetBlogOptions tunes a single blog read. Mode "edit" loads the blog for
// its author's editor and is not counted as a read.
type GetBlogOptions struct {
	Draft bool
	Mode  string
}

// UserBlogQuery selects one page of an author's own blogs.
type UserBlogQuery struct {
	Page            int
	Draft           bool
	DeletedDocCount int
}

func (s *BlogService) PublishBlog(ctx context.Context, caller models.Caller, in PublishBlogInput) (*models.Blog, error) {
	if caller.UserID == "" {
		return nil, forbidden("sign in to publish a blog")
	}
	if err := validateBlog(&in); err != nil {
		return nil, err
	}

	if in.BlogID != "" {
		return s.editBlog(ctx, caller, in)
	}

	now := s.now()
	blog := &models.Blog{
		BlogID:      newBlogID(in.Title),
		Title:       in.Title,
		Banner:      in.Banner,
		Des:         in.Des,
		Content:     in.Content,
		Tags:        in.Tags,
		Author:      caller.UserID,
		Draft:       in.Draft,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	if err := s.blogs.CreateBlog(ctx, blog); err != nil {
		return nil, err
	}
	if !blog.Draft {
		s.runner.Run(ctx, s.counters.PostPublished(blog.Author, blog.BlogID))
	}
	log.WithFields(log.Fields{"blog": blog.BlogID, "draft": blog.Draft}).Info("[blogs] blog created")
	return blog, nil
}

func (s *BlogService) editBlog(ctx context.Context, caller models.Caller, in PublishBlogInput) (*models.Blog, error) {
	blog, err := s.blogs.GetBlogByID(ctx, in.BlogID)
	if err != nil {
		return nil, notFound(err, "blog", in.BlogID)
	}
	if blog.Author != caller.UserID {
		return nil, forbidden("only the author can edit this blog")
	}
	if !blog.Draft && in.Draft {
		return nil, invalid("a published blog can not be turned back into a draft")
	}

	firstPublication := blog.Draft && !in.Draft
	blog.Title = in.Title
	blog.Banner = in.Banner
	blog.Des = in.Des
	blog.Content = in.Content
	blog.Tags = in.Tags
	blog.Draft = in.Draft
	if firstPublication {
		blog.PublishedAt = s.now()
	}
	if err := s.blogs.UpdateBlog(ctx, blog); err != nil {
		return nil, notFound(err, "blog", in.BlogID)
	}
	if firstPublication {
		s.runner.Run(ctx, s.counters.PostPublished(blog.Author, blog.BlogID))
	}
	return blog, nil
}

// GetBlog loads a blog with its author populated. Unless the blog is opened
// for editing the read is counted on the blog (awaited) and on its author
// (detached).
func (s *BlogService) GetBlog(ctx context.Context, caller models.Caller, blogID string, opts GetBlogOptions) (*models.Blog, error) {
	blog, err := s.blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, notFound(err, "blog", blogID)
	}
	if blog.Draft && (!opts.Draft || caller.UserID != blog.Author) {
		return nil, forbidden("you can not access draft blogs")
	}

	if opts.Mode != "edit" {
		if err := s.counters.RecordRead(ctx, blogID); err != nil {
			return nil, notFound(err, "blog", blogID)
		}
		blog.Activity.TotalReads++
		s.runner.Go(s.counters.AuthorRead(blog.Author))
	}
	return blog, nil
}

// ListLatestBlogs pages through published blogs, newest first.
func (s *BlogService) ListLatestBlogs(ctx context.Context, page, deletedDocCount int) ([]models.Blog, error) {
	return s.blogs.ListBlogs(ctx, models.BlogFilter{}, Paginate(page, s.pageSize, deletedDocCount))
}

func (s *BlogService) CountLatestBlogs(ctx context.Context) (int64, error) {
	return s.blogs.CountBlogs(ctx, models.BlogFilter{})
}

// ListUserBlogs pages through an author's published blogs or drafts.
func (s *BlogService) ListUserBlogs(ctx context.Context, author string, q UserBlogQuery) ([]models.Blog, error) {
	filter := models.BlogFilter{Author: author, Draft: q.Draft}
	return s.blogs.ListBlogs(ctx, filter, Paginate(q.Page, s.pageSize, q.DeletedDocCount))
}

func (s *BlogService) CountUserBlogs(ctx context.Context, author string, draft bool) (int64, error) {
	return s.blogs.CountBlogs(ctx, models.BlogFilter{Author: author, Draft: draft})
}

// DeleteBlog removes a blog, then clears its comments and notifications and
// uncounts it for its author concurrently. A failed cascade leaves orphans
// that are logged, not returned.
func (s *BlogService) DeleteBlog(ctx context.Context, caller models.Caller, blogID string) error {
	blog, err := s.blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return notFound(err, "blog", blogID)
	}
	if !caller.IsAdmin && caller.UserID != blog.Author {
		return forbidden("you can not delete this blog")
	}
	if err := s.blogs.DeleteBlog(ctx, blogID); err != nil {
		return notFound(err, "blog", blogID)
	}

	steps := []Step{
		{
			Name: "blog.delete_comments",
			Key:  "blog:" + blogID + ":delete_comments",
			Run: func(ctx context.Context) error {
				_, err := s.comments.DeleteCommentsByBlog(ctx, blogID)
				return err
			},
		},
		{
			Name: "blog.delete_notifications",
			Key:  "blog:" + blogID + ":delete_notifications",
			Run: func(ctx context.Context) error {
				_, err := s.notifications.DeleteMany(ctx, models.NotificationFilter{Blog: blogID})
				return err
			},
		},
	}
	if !blog.Draft {
		steps = append(steps, s.counters.PostDeleted(blog.Author, blogID))
	}

	var g errgroup.Group
	for _, step := range steps {
		g.Go(func() error {
			if s.runner.Run(ctx, step) > 0 {
				return fmt.Errorf("%s failed", step.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithField("blog", blogID).Warnf("[blogs] delete cascade incomplete: %v", err)
	}
	return nil
}

func validateBlog(in *PublishBlogInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("you must provide a title")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags

	if len(in.Des) > maxDescriptionLength {
		return invalid("blog description must be under %d characters", maxDescriptionLength)
	}
	if len(in.Tags) > maxTags {
		return invalid("provide at most %d tags", maxTags)
	}
	if in.Draft {
		return nil
	}
	switch {
	case strings.TrimSpace(in.Des) == "":
		return invalid("you must provide a blog description to publish the blog")
	case in.Banner == "":
		return invalid("you must provide a blog banner to publish it")
	case strings.TrimSpace(in.Content) == "":
		return invalid("there must be some blog content to publish it")
	case len(in.Tags) == 0:
		return invalid("provide tags in order to publish the blog")
	}
	return nil
}

// newBlogID derives a readable id from the title plus a random suffix.
func newBlogID(title string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	suffix := strings.ReplaceAll(newID(), "-", "")[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
