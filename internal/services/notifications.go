package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/quillpress/backend/internal/events"
	"github.com/anonto42/quillpress/backend/internal/metrics"
	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/anonto42/quillpress/backend/internal/repositories"
)

// NotificationService fans engagement out into notification records and
// serves a user's notification feed.
type NotificationService struct {
	notifications repositories.NotificationRepository
	blogs         repositories.BlogRepository
	counters      *Counters
	publisher     events.Publisher
	runner        *Runner
	pageSize      int
	now           func() time.Time
}

// LikeResult is the like state after a toggle.
type LikeResult struct {
	Liked bool `json:"liked_by_user"`
}

// NotificationQuery selects one page of a notification feed.
type NotificationQuery struct {
	Page            int
	Filter          string
	DeletedDocCount int
}

// ToggleLike flips the caller's like on a blog. The prior state is the one
// the caller asserts; it is not re-derived from the store.
func (s *NotificationService) ToggleLike(ctx context.Context, caller models.Caller, blogID string, currentlyLiked bool) (LikeResult, error) {
	blog, err := s.blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return LikeResult{}, notFound(err, "blog", blogID)
	}

	delta := 1
	if currentlyLiked {
		delta = -1
	}
	if err := s.counters.AdjustLikes(ctx, blogID, delta); err != nil {
		return LikeResult{}, notFound(err, "blog", blogID)
	}

	if !currentlyLiked {
		if caller.UserID != blog.Author {
			s.runner.Run(ctx, s.notify(&models.Notification{
				Type:            models.NotificationLike,
				Blog:            blogID,
				NotificationFor: blog.Author,
				User:            caller.UserID,
			}, "")...)
		}
		return LikeResult{Liked: true}, nil
	}

	s.runner.Run(ctx, Step{
		Name: "notification.delete_like",
		Run: func(ctx context.Context) error {
			err := s.notifications.DeleteOne(ctx, models.NotificationFilter{
				Types: []models.NotificationType{models.NotificationLike},
				Blog:  blogID,
				User:  caller.UserID,
			})
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		},
	})
	return LikeResult{Liked: false}, nil
}

// HasLiked reports whether user has a like recorded on blogID.
func (s *NotificationService) HasLiked(ctx context.Context, blogID, user string) (bool, error) {
	return s.notifications.Exists(ctx, models.NotificationFilter{
		Types: []models.NotificationType{models.NotificationLike},
		Blog:  blogID,
		User:  user,
	})
}

// HasUnseen reports whether someone else did something user was not shown yet.
func (s *NotificationService) HasUnseen(ctx context.Context, user string) (bool, error) {
	seen := false
	return s.notifications.Exists(ctx, models.NotificationFilter{
		NotificationFor: user,
		ExcludeUser:     user,
		Seen:            &seen,
	})
}

// ListNotifications returns one page of user's feed, newest first, and marks
// the returned unseen notifications as seen in the background.
func (s *NotificationService) ListNotifications(ctx context.Context, user string, q NotificationQuery) ([]models.Notification, error) {
	types, err := notificationTypes(q.Filter)
	if err != nil {
		return nil, err
	}
	filter := models.NotificationFilter{NotificationFor: user, ExcludeUser: user, Types: types}

	list, err := s.notifications.List(ctx, filter, Paginate(q.Page, s.pageSize, q.DeletedDocCount))
	if err != nil {
		return nil, err
	}

	var unseen []string
	for _, n := range list {
		if !n.Seen {
			unseen = append(unseen, n.ID)
		}
	}
	if len(unseen) > 0 {
		s.runner.Go(Step{
			Name: "notification.mark_seen",
			Run: func(ctx context.Context) error {
				return s.notifications.MarkSeen(ctx, unseen)
			},
		})
	}
	return list, nil
}

// CountNotifications counts user's feed under the given filter.
func (s *NotificationService) CountNotifications(ctx context.Context, user, filter string) (int64, error) {
	types, err := notificationTypes(filter)
	if err != nil {
		return 0, err
	}
	return s.notifications.Count(ctx, models.NotificationFilter{NotificationFor: user, ExcludeUser: user, Types: types})
}

// notify returns the steps that store n and announce it on the event stream.
func (s *NotificationService) notify(n *models.Notification, key string) []Step {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	publishKey := ""
	if key != "" {
		publishKey = key + ":publish"
	}
	return []Step{
		{
			Name: "notification.create",
			Key:  key,
			Run: func(ctx context.Context) error {
				if err := s.notifications.CreateNotification(ctx, n); err != nil {
					return err
				}
				metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
				return nil
			},
		},
		{
			Name: "events.publish",
			Key:  publishKey,
			Run: func(ctx context.Context) error {
				e := events.Event{
					Type:   string(n.Type),
					Blog:   n.Blog,
					Actor:  n.User,
					Target: n.NotificationFor,
					At:     n.CreatedAt,
				}
				if n.Comment != nil {
					e.Comment = *n.Comment
				}
				return s.publisher.Publish(ctx, e)
			},
		},
	}
}

// recordReply marks the notification the user replied from.
func (s *NotificationService) recordReply(notificationID, replyID string) Step {
	return Step{
		Name: "notification.set_reply",
		Key:  "comment:" + replyID + ":set_reply",
		Run: func(ctx context.Context) error {
			return s.notifications.SetReply(ctx, notificationID, replyID)
		},
	}
}

// commentRemoved drops the notification about a deleted comment and clears
// it from notifications that recorded it as a reply.
func (s *NotificationService) commentRemoved(commentID string) []Step {
	return []Step{
		{
			Name: "notification.delete_for_comment",
			Key:  "comment:" + commentID + ":purge_notifications",
			Run: func(ctx context.Context) error {
				_, err := s.notifications.DeleteMany(ctx, models.NotificationFilter{Comment: commentID})
				return err
			},
		},
		{
			Name: "notification.unset_reply",
			Key:  "comment:" + commentID + ":unset_reply",
			Run: func(ctx context.Context) error {
				_, err := s.notifications.UnsetReply(ctx, commentID)
				return err
			},
		},
	}
}

func notificationTypes(filter string) ([]models.NotificationType, error) {
	switch models.NotificationType(filter) {
	case "", "all":
		return nil, nil
	case models.NotificationLike, models.NotificationComment, models.NotificationReply:
		return []models.NotificationType{models.NotificationType(filter)}, nil
	default:
		return nil, invalid("unknown notification filter %q", filter)
	}
}
