package services

import (
	"time"

	"github.com/anonto42/quillpress/backend/internal/events"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	"github.com/google/uuid"
)

// Config tunes listing sizes and the clock used for new documents.
type Config struct {
	CommentPageSize      int
	NotificationPageSize int
	BlogPageSize         int
	Now                  func() time.Time
}

func (c *Config) setDefaults() {
	if c.CommentPageSize < 1 {
		c.CommentPageSize = 5
	}
	if c.NotificationPageSize < 1 {
		c.NotificationPageSize = 10
	}
	if c.BlogPageSize < 1 {
		c.BlogPageSize = 5
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Services groups the engagement components over one store.
type Services struct {
	Blogs         *BlogService
	Comments      *CommentService
	Notifications *NotificationService
	Counters      *Counters
	Runner        *Runner
	Users         repositories.UserRepository
}

func New(store *repositories.Store, runner *Runner, publisher events.Publisher, cfg Config) *Services {
	cfg.setDefaults()
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	counters := &Counters{blogs: store.Blogs, users: store.Users}
	fanout := &NotificationService{
		notifications: store.Notifications,
		blogs:         store.Blogs,
		counters:      counters,
		publisher:     publisher,
		runner:        runner,
		pageSize:      cfg.NotificationPageSize,
		now:           cfg.Now,
	}
	comments := &CommentService{
		comments: store.Comments,
		blogs:    store.Blogs,
		counters: counters,
		fanout:   fanout,
		runner:   runner,
		pageSize: cfg.CommentPageSize,
		now:      cfg.Now,
	}
	blogs := &BlogService{
		blogs:         store.Blogs,
		comments:      store.Comments,
		notifications: store.Notifications,
		counters:      counters,
		runner:        runner,
		pageSize:      cfg.BlogPageSize,
		now:           cfg.Now,
	}
	return &Services{
		Blogs:         blogs,
		Comments:      comments,
		Notifications: fanout,
		Counters:      counters,
		Runner:        runner,
		Users:         store.Users,
	}
}

func newID() string {
	return uuid.NewString()
}
