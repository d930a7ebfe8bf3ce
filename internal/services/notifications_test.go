package services

import (
	"testing"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_TwiceRestoresCounter(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Likeable")

	res, err := env.svc.Notifications.ToggleLike(env.ctx, reader, blog.BlogID, false)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, env.blog(blog.BlogID).Activity.TotalLikes)

	liked, err := env.svc.Notifications.HasLiked(env.ctx, blog.BlogID, reader.UserID)
	require.NoError(t, err)
	assert.True(t, liked)

	likeFilter := models.NotificationFilter{
		Types: []models.NotificationType{models.NotificationLike},
		Blog:  blog.BlogID,
		User:  reader.UserID,
	}
	notes := env.notifications(likeFilter)
	require.Len(t, notes, 1)
	assert.Equal(t, author.UserID, notes[0].NotificationFor)

	res, err = env.svc.Notifications.ToggleLike(env.ctx, reader, blog.BlogID, true)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, env.blog(blog.BlogID).Activity.TotalLikes)
	assert.Empty(t, env.notifications(likeFilter))

	liked, err = env.svc.Notifications.HasLiked(env.ctx, blog.BlogID, reader.UserID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, []string{"like"}, env.publisher.types())
}

func TestToggleLike_OwnBlogCreatesNoNotification(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	blog := env.publish(author, "Self love")

	res, err := env.svc.Notifications.ToggleLike(env.ctx, author, blog.BlogID, false)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, env.blog(blog.BlogID).Activity.TotalLikes)
	assert.Empty(t, env.notifications(models.NotificationFilter{Blog: blog.BlogID}))

	// unliking without a stored like notification still succeeds
	res, err = env.svc.Notifications.ToggleLike(env.ctx, author, blog.BlogID, true)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, env.blog(blog.BlogID).Activity.TotalLikes)
}

func TestToggleLike_TrustsAssertedPriorState(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Double like")

	for i := 0; i < 2; i++ {
		_, err := env.svc.Notifications.ToggleLike(env.ctx, reader, blog.BlogID, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, env.blog(blog.BlogID).Activity.TotalLikes)
}

func TestToggleLike_MissingBlog(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser("reader")

	_, err := env.svc.Notifications.ToggleLike(env.ctx, reader, "missing", false)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestHasUnseen(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Unseen")

	unseen, err := env.svc.Notifications.HasUnseen(env.ctx, author.UserID)
	require.NoError(t, err)
	assert.False(t, unseen)

	env.comment(blog, reader, "ping", "")

	unseen, err = env.svc.Notifications.HasUnseen(env.ctx, author.UserID)
	require.NoError(t, err)
	assert.True(t, unseen)

	unseen, err = env.svc.Notifications.HasUnseen(env.ctx, reader.UserID)
	require.NoError(t, err)
	assert.False(t, unseen)

	_, err = env.svc.Notifications.ListNotifications(env.ctx, author.UserID, NotificationQuery{Page: 1})
	require.NoError(t, err)

	unseen, err = env.svc.Notifications.HasUnseen(env.ctx, author.UserID)
	require.NoError(t, err)
	assert.False(t, unseen)
}

// seedNotifications stores n notifications for "author", oldest first,
// alternating like and comment.
func seedNotifications(t *testing.T, env *testEnv, n int) []models.Notification {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		typ := models.NotificationLike
		if i%2 == 1 {
			typ = models.NotificationComment
		}
		note := models.Notification{
			ID:              "n" + string(rune('a'+i)),
			Type:            typ,
			Blog:            "blog-1",
			NotificationFor: "author",
			User:            "reader",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, env.store.Notifications.CreateNotification(env.ctx, &note))
		out = append(out, note)
	}
	return out
}

func TestListNotifications_PagesNewestFirstAndMarksSeen(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("author")
	env.createUser("reader")
	seeded := seedNotifications(t, env, 5)

	own := models.Notification{ID: "own", Type: models.NotificationComment, Blog: "blog-1", NotificationFor: "author", User: "author"}
	require.NoError(t, env.store.Notifications.CreateNotification(env.ctx, &own))

	page1, err := env.svc.Notifications.ListNotifications(env.ctx, "author", NotificationQuery{Page: 1, Filter: "all"})
	require.NoError(t, err)
	require.Len(t, page1, 3)
	assert.Equal(t, seeded[4].ID, page1[0].ID)
	assert.Equal(t, seeded[3].ID, page1[1].ID)
	assert.Equal(t, seeded[2].ID, page1[2].ID)
	require.NotNil(t, page1[0].Actor)
	assert.Equal(t, "reader", page1[0].Actor.Username)

	seen := false
	unseen, err := env.store.Notifications.Count(env.ctx, models.NotificationFilter{NotificationFor: "author", ExcludeUser: "author", Seen: &seen})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unseen)

	page2, err := env.svc.Notifications.ListNotifications(env.ctx, "author", NotificationQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, seeded[1].ID, page2[0].ID)

	compensated, err := env.svc.Notifications.ListNotifications(env.ctx, "author", NotificationQuery{Page: 2, DeletedDocCount: 1})
	require.NoError(t, err)
	require.Len(t, compensated, 3)
	assert.Equal(t, seeded[2].ID, compensated[0].ID)
}

func TestListNotifications_Filter(t *testing.T) {
	env := newTestEnv(t)
	seedNotifications(t, env, 5)

	likes, err := env.svc.Notifications.ListNotifications(env.ctx, "author", NotificationQuery{Page: 1, Filter: "like"})
	require.NoError(t, err)
	require.Len(t, likes, 3)
	for _, n := range likes {
		assert.Equal(t, models.NotificationLike, n.Type)
	}

	count, err := env.svc.Notifications.CountNotifications(env.ctx, "author", "comment")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = env.svc.Notifications.CountNotifications(env.ctx, "author", "all")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	_, err = env.svc.Notifications.ListNotifications(env.ctx, "author", NotificationQuery{Page: 1, Filter: "follow"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = env.svc.Notifications.CountNotifications(env.ctx, "author", "follow")
	assert.ErrorAs(t, err, &ve)
}
