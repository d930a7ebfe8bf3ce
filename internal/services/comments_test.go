package services

import (
	"testing"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_TopLevel(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Threads in Go")

	c := env.comment(blog, reader, "nice post", "")

	assert.False(t, c.IsReply)
	assert.Nil(t, c.Parent)
	assert.Equal(t, author.UserID, c.BlogAuthor)

	stored := env.blog(blog.BlogID)
	assert.Equal(t, 1, stored.Activity.TotalComments)
	assert.Equal(t, 1, stored.Activity.TotalParentComments)
	assert.Equal(t, []string{c.ID}, []string(stored.Comments))

	notes := env.notifications(models.NotificationFilter{NotificationFor: author.UserID})
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationComment, notes[0].Type)
	assert.Equal(t, reader.UserID, notes[0].User)
	require.NotNil(t, notes[0].Comment)
	assert.Equal(t, c.ID, *notes[0].Comment)
	assert.Equal(t, []string{"comment"}, env.publisher.types())
}

func TestCreateComment_ReplyRoutesToParentAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Replies")

	root := env.comment(blog, reader, "question", "")
	reply := env.comment(blog, author, "answer", root.ID)

	assert.True(t, reply.IsReply)
	require.NotNil(t, reply.Parent)
	assert.Equal(t, root.ID, *reply.Parent)

	parent, err := env.store.Comments.GetCommentByID(env.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reply.ID}, []string(parent.Children))

	stored := env.blog(blog.BlogID)
	assert.Equal(t, 2, stored.Activity.TotalComments)
	assert.Equal(t, 1, stored.Activity.TotalParentComments)

	notes := env.notifications(models.NotificationFilter{Types: []models.NotificationType{models.NotificationReply}})
	require.Len(t, notes, 1)
	assert.Equal(t, reader.UserID, notes[0].NotificationFor)
	assert.Equal(t, author.UserID, notes[0].User)
	require.NotNil(t, notes[0].RepliedOnComment)
	assert.Equal(t, root.ID, *notes[0].RepliedOnComment)
}

func TestCreateComment_RecordsReplyOnSourceNotification(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Inbox replies")

	root := env.comment(blog, reader, "hello", "")
	notes := env.notifications(models.NotificationFilter{NotificationFor: author.UserID})
	require.Len(t, notes, 1)

	reply, err := env.svc.Comments.CreateComment(env.ctx, CreateCommentInput{
		BlogID:         blog.BlogID,
		Body:           "hi back",
		CommentedBy:    author.UserID,
		ReplyingTo:     root.ID,
		NotificationID: notes[0].ID,
	})
	require.NoError(t, err)

	source := env.notifications(models.NotificationFilter{ID: notes[0].ID})
	require.Len(t, source, 1)
	require.NotNil(t, source[0].Reply)
	assert.Equal(t, reply.ID, *source[0].Reply)
}

func TestCreateComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Validation")
	other := env.publish(author, "Another blog")
	foreign := env.comment(other, reader, "elsewhere", "")

	tests := []struct {
		name  string
		input CreateCommentInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "blank body",
			input: CreateCommentInput{BlogID: blog.BlogID, Body: "   ", CommentedBy: reader.UserID},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
			},
		},
		{
			name:  "wrong blog author",
			input: CreateCommentInput{BlogID: blog.BlogID, BlogAuthor: reader.UserID, Body: "hi", CommentedBy: reader.UserID},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
			},
		},
		{
			name:  "missing blog",
			input: CreateCommentInput{BlogID: "nope", Body: "hi", CommentedBy: reader.UserID},
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
			},
		},
		{
			name:  "parent on another blog",
			input: CreateCommentInput{BlogID: blog.BlogID, Body: "hi", CommentedBy: reader.UserID, ReplyingTo: foreign.ID},
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Comments.CreateComment(env.ctx, tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	assert.Equal(t, int64(0), env.count(&models.Comment{}, "blog_id = ?", blog.BlogID))
	assert.Equal(t, 0, env.blog(blog.BlogID).Activity.TotalComments)
}

func TestCreateComment_OwnBlogIsNotSelfSuppressed(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	blog := env.publish(author, "Talking to myself")

	env.comment(blog, author, "first!", "")

	notes := env.notifications(models.NotificationFilter{Blog: blog.BlogID})
	require.Len(t, notes, 1)
	assert.Equal(t, author.UserID, notes[0].NotificationFor)
	assert.Equal(t, author.UserID, notes[0].User)

	unseen, err := env.svc.Notifications.HasUnseen(env.ctx, author.UserID)
	require.NoError(t, err)
	assert.False(t, unseen)
}

func TestDeleteComment_RemovesWholeSubtree(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Deep threads")

	root := env.comment(blog, reader, "root", "")
	child1 := env.comment(blog, author, "child 1", root.ID)
	child2 := env.comment(blog, reader, "child 2", root.ID)
	grandchild := env.comment(blog, reader, "grandchild", child1.ID)
	other := env.comment(blog, reader, "unrelated", "")

	removed, err := env.svc.Comments.DeleteComment(env.ctx, reader, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	deleted := []string{root.ID, child1.ID, child2.ID, grandchild.ID}
	assert.Equal(t, int64(1), env.count(&models.Comment{}, "blog_id = ?", blog.BlogID))
	assert.Equal(t, int64(0), env.count(&models.Comment{}, "parent IN ?", deleted))
	assert.Equal(t, int64(0), env.count(&models.Notification{}, "comment IN ?", deleted))
	assert.Equal(t, int64(1), env.count(&models.Notification{}, "blog = ?", blog.BlogID))

	stored := env.blog(blog.BlogID)
	assert.Equal(t, 1, stored.Activity.TotalComments)
	assert.Equal(t, 1, stored.Activity.TotalParentComments)
	assert.Equal(t, []string{other.ID}, []string(stored.Comments))
}

func TestDeleteComment_UnlinksFromParent(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Pruning")

	root := env.comment(blog, reader, "root", "")
	child1 := env.comment(blog, reader, "child 1", root.ID)
	child2 := env.comment(blog, reader, "child 2", root.ID)
	env.comment(blog, reader, "grandchild", child1.ID)

	// the blog author may remove a reader's comment
	removed, err := env.svc.Comments.DeleteComment(env.ctx, author, child1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	parent, err := env.store.Comments.GetCommentByID(env.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{child2.ID}, []string(parent.Children))

	stored := env.blog(blog.BlogID)
	assert.Equal(t, 2, stored.Activity.TotalComments)
	assert.Equal(t, 1, stored.Activity.TotalParentComments)
}

func TestDeleteComment_UnsetsReplyReference(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Unset reply")

	root := env.comment(blog, reader, "hello", "")
	source := env.notifications(models.NotificationFilter{NotificationFor: author.UserID})
	require.Len(t, source, 1)

	reply, err := env.svc.Comments.CreateComment(env.ctx, CreateCommentInput{
		BlogID:         blog.BlogID,
		Body:           "hi",
		CommentedBy:    author.UserID,
		ReplyingTo:     root.ID,
		NotificationID: source[0].ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Comments.DeleteComment(env.ctx, author, reply.ID)
	require.NoError(t, err)

	after := env.notifications(models.NotificationFilter{ID: source[0].ID})
	require.Len(t, after, 1)
	assert.Nil(t, after[0].Reply)
	assert.Equal(t, int64(0), env.count(&models.Notification{}, "comment = ?", reply.ID))
}

func TestDeleteComment_Permissions(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	stranger := env.createUser("stranger")
	blog := env.publish(author, "Permissions")
	c := env.comment(blog, reader, "mine", "")

	_, err := env.svc.Comments.DeleteComment(env.ctx, stranger, c.ID)
	var pe *PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(1), env.count(&models.Comment{}, "id = ?", c.ID))

	_, err = env.svc.Comments.DeleteComment(env.ctx, stranger, "missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	admin := models.Caller{UserID: "root-admin", IsAdmin: true}
	removed, err := env.svc.Comments.DeleteComment(env.ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestListTopLevel_NewestFirstWithoutReplies(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Listing")

	first := env.comment(blog, reader, "first", "")
	second := env.comment(blog, author, "second", "")
	env.comment(blog, author, "reply", first.ID)

	list, err := env.svc.Comments.ListTopLevel(env.ctx, blog.BlogID, 0, 5, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	for _, c := range list {
		assert.False(t, c.IsReply)
	}
	require.NotNil(t, list[1].Commenter)
	assert.Equal(t, "reader", list[1].Commenter.Username)
}

func TestListReplies(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Replies listing")

	root := env.comment(blog, reader, "root", "")
	r1 := env.comment(blog, author, "r1", root.ID)
	r2 := env.comment(blog, reader, "r2", root.ID)
	env.comment(blog, reader, "nested", r1.ID)

	replies, err := env.svc.Comments.ListReplies(env.ctx, root.ID, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r2.ID, replies[0].ID)
	assert.Equal(t, r1.ID, replies[1].ID)

	page, err := env.svc.Comments.ListReplies(env.ctx, root.ID, 1, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, r1.ID, page[0].ID)

	_, err = env.svc.Comments.ListReplies(env.ctx, "missing", 0, 5, 0)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListTopLevel_DeletedDocCountKeepsPagesAligned(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Seven comments")

	var created []*models.Comment
	for i := 0; i < 7; i++ {
		created = append(created, env.comment(blog, reader, "comment", ""))
	}
	// newest first: created[6] ... created[0]
	ordered := make([]string, 0, len(created))
	for i := len(created) - 1; i >= 0; i-- {
		ordered = append(ordered, created[i].ID)
	}

	page1, err := env.svc.Comments.ListTopLevel(env.ctx, blog.BlogID, 0, 5, 0)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	for i, c := range page1 {
		assert.Equal(t, ordered[i], c.ID)
	}

	_, err = env.svc.Comments.DeleteComment(env.ctx, reader, page1[2].ID)
	require.NoError(t, err)

	page2, err := env.svc.Comments.ListTopLevel(env.ctx, blog.BlogID, 5, 5, 1)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ordered[5], page2[0].ID)
	assert.Equal(t, ordered[6], page2[1].ID)
}

func TestCommentThreadInvariant(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("author")
	reader := env.createUser("reader")
	blog := env.publish(author, "Invariant")

	root := env.comment(blog, reader, "root", "")
	reply := env.comment(blog, author, "reply", root.ID)
	env.comment(blog, reader, "reply to reply", reply.ID)
	env.comment(blog, reader, "second root", "")

	var all []models.Comment
	require.NoError(t, env.db.Where("blog_id = ?", blog.BlogID).Find(&all).Error)
	require.Len(t, all, 4)
	for _, c := range all {
		assert.Equal(t, c.IsReply, c.Parent != nil, "comment %s", c.ID)
	}
}
