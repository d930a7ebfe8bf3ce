package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository for PostgreSQL and SQLite
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormNotificationRepository) Exists(ctx context.Context, filter models.NotificationFilter) (bool, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Scopes(notificationScope(filter)).Select("id").Take(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *GormNotificationRepository) List(ctx context.Context, filter models.NotificationFilter, w models.Window) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).Scopes(notificationScope(filter)).
		Order("created_at DESC, id DESC").
		Offset(int(w.Skip)).Limit(int(w.Limit)).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	actors := make([]string, 0, len(notifications))
	for _, n := range notifications {
		actors = append(actors, n.User)
	}
	summaries, err := userSummaries(ctx, r.db, actors)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		if s, ok := summaries[notifications[i].User]; ok {
			notifications[i].Actor = &s
		}
	}
	return notifications, nil
}

func (r *GormNotificationRepository) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Scopes(notificationScope(filter)).Count(&count).Error
	return count, err
}

// DeleteOne removes the newest notification matching filter.
func (r *GormNotificationRepository) DeleteOne(ctx context.Context, filter models.NotificationFilter) error {
	var n models.Notification
	err := r.db.WithContext(ctx).Scopes(notificationScope(filter)).Select("id").Order("created_at DESC").Take(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification: %w", ErrNotFound)
		}
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", n.ID).Delete(&models.Notification{}).Error
}

func (r *GormNotificationRepository) DeleteMany(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	res := r.db.WithContext(ctx).Scopes(notificationScope(filter)).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) SetReply(ctx context.Context, id, replyID string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).UpdateColumn("reply", replyID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormNotificationRepository) UnsetReply(ctx context.Context, replyID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("reply = ?", replyID).UpdateColumn("reply", gorm.Expr("NULL"))
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id IN ?", ids).UpdateColumn("seen", true).Error
}

func notificationScope(f models.NotificationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ID != "" {
			db = db.Where("id = ?", f.ID)
		}
		if len(f.Types) > 0 {
			db = db.Where("type IN ?", f.Types)
		}
		if f.Blog != "" {
			db = db.Where("blog = ?", f.Blog)
		}
		if f.NotificationFor != "" {
			db = db.Where("notification_for = ?", f.NotificationFor)
		}
		if f.User != "" {
			db = db.Where(`"user" = ?`, f.User)
		} else if f.ExcludeUser != "" {
			db = db.Where(`"user" <> ?`, f.ExcludeUser)
		}
		if f.Comment != "" {
			db = db.Where("comment = ?", f.Comment)
		}
		if f.Reply != "" {
			db = db.Where("reply = ?", f.Reply)
		}
		if f.Seen != nil {
			db = db.Where("seen = ?", *f.Seen)
		}
		return db
	}
}
