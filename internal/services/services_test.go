package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/quillpress/backend/internal/events"
	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeClock ticks one second per call so creation order is strict.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	store     *repositories.Store
	svc       *Services
	publisher *recordingPublisher
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.MigrateGorm(db))
	return db
}

// newTestEnv wires the services over an in-memory SQLite store with a
// synchronous runner, three notifications and two blogs per page.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store := repositories.NewGormStore(db)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	publisher := &recordingPublisher{}

	runner := NewRunner(store.Ledger, false, time.Second)
	svc := New(store, runner, publisher, Config{
		CommentPageSize:      5,
		NotificationPageSize: 3,
		BlogPageSize:         2,
		Now:                  clock.Now,
	})
	return &testEnv{t: t, ctx: context.Background(), db: db, store: store, svc: svc, publisher: publisher}
}

func (env *testEnv) createUser(id string) models.Caller {
	env.t.Helper()
	err := env.store.Users.CreateUser(env.ctx, &models.User{
		ID:           id,
		PersonalInfo: models.PersonalInfo{Fullname: "User " + id, Username: id},
	})
	require.NoError(env.t, err)
	return models.Caller{UserID: id}
}

func (env *testEnv) publish(author models.Caller, title string) *models.Blog {
	env.t.Helper()
	blog, err := env.svc.Blogs.PublishBlog(env.ctx, author, PublishBlogInput{
		Title:   title,
		Banner:  "https://cdn.example.com/banner.png",
		Des:     "a short description",
		Content: "some content",
		Tags:    []string{"Go"},
	})
	require.NoError(env.t, err)
	return blog
}

func (env *testEnv) comment(blog *models.Blog, by models.Caller, body, replyingTo string) *models.Comment {
	env.t.Helper()
	c, err := env.svc.Comments.CreateComment(env.ctx, CreateCommentInput{
		BlogID:      blog.BlogID,
		Body:        body,
		CommentedBy: by.UserID,
		ReplyingTo:  replyingTo,
	})
	require.NoError(env.t, err)
	return c
}

func (env *testEnv) blog(id string) *models.Blog {
	env.t.Helper()
	blog, err := env.store.Blogs.GetBlogByID(env.ctx, id)
	require.NoError(env.t, err)
	return blog
}

func (env *testEnv) user(id string) *models.User {
	env.t.Helper()
	user, err := env.store.Users.GetUserByID(env.ctx, id)
	require.NoError(env.t, err)
	return user
}

func (env *testEnv) notifications(filter models.NotificationFilter) []models.Notification {
	env.t.Helper()
	list, err := env.store.Notifications.List(env.ctx, filter, models.Window{Limit: 1000})
	require.NoError(env.t, err)
	return list
}

func (env *testEnv) count(model interface{}, query string, args ...interface{}) int64 {
	env.t.Helper()
	var n int64
	require.NoError(env.t, env.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
