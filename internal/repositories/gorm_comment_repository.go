package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommentRepository implements CommentRepository for PostgreSQL and SQLite
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CommentedAt.IsZero() {
		comment.CommentedAt = time.Now()
	}
	if comment.Children == nil {
		comment.Children = datatypes.JSONSlice[string]{}
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *GormCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

func (r *GormCommentRepository) DeleteComment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormCommentRepository) AppendChild(ctx context.Context, parentID, childID string) error {
	return r.editChildren(ctx, parentID, func(ids []string) []string {
		return append(ids, childID)
	})
}

func (r *GormCommentRepository) RemoveChild(ctx context.Context, parentID, childID string) error {
	return r.editChildren(ctx, parentID, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(c string) bool { return c == childID })
	})
}

func (r *GormCommentRepository) ListTopLevel(ctx context.Context, blogID string, w models.Window) ([]models.Comment, error) {
	return r.list(ctx, r.db.Where("blog_id = ? AND is_reply = ?", blogID, false), w)
}

func (r *GormCommentRepository) ListReplies(ctx context.Context, parentID string, w models.Window) ([]models.Comment, error) {
	parent, err := r.GetCommentByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(parent.Children) == 0 {
		return []models.Comment{}, nil
	}
	return r.list(ctx, r.db.Where("id IN ?", []string(parent.Children)), w)
}

func (r *GormCommentRepository) DeleteCommentsByBlog(ctx context.Context, blogID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("blog_id = ?", blogID).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

func (r *GormCommentRepository) list(ctx context.Context, query *gorm.DB, w models.Window) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := query.WithContext(ctx).
		Order("commented_at DESC, id DESC").
		Offset(int(w.Skip)).Limit(int(w.Limit)).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentedBy)
	}
	summaries, err := userSummaries(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if s, ok := summaries[comments[i].CommentedBy]; ok {
			comments[i].Commenter = &s
		}
	}
	return comments, nil
}

func (r *GormCommentRepository) editChildren(ctx context.Context, id string, edit func([]string) []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "children").First(&comment, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comment %s: %w", id, ErrNotFound)
			}
			return err
		}
		children := datatypes.JSONSlice[string](edit([]string(comment.Children)))
		return tx.Model(&models.Comment{}).Where("id = ?", id).UpdateColumn("children", children).Error
	})
}
