package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBlogRepository implements BlogRepository for PostgreSQL and SQLite
type GormBlogRepository struct {
	db *gorm.DB
}

// NewGormBlogRepository creates a new GormBlogRepository
func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

func (r *GormBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	if blog.PublishedAt.IsZero() {
		blog.PublishedAt = time.Now()
	}
	blog.UpdatedAt = blog.PublishedAt
	if blog.Comments == nil {
		blog.Comments = datatypes.JSONSlice[string]{}
	}
	if blog.Tags == nil {
		blog.Tags = datatypes.JSONSlice[string]{}
	}
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *GormBlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, "blog_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blog %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	summaries, err := userSummaries(ctx, r.db, []string{blog.Author})
	if err != nil {
		return nil, err
	}
	if s, ok := summaries[blog.Author]; ok {
		blog.AuthorInfo = &s
	}
	return &blog, nil
}

func (r *GormBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("blog_id = ?", blog.BlogID).Updates(map[string]interface{}{
		"title":        blog.Title,
		"banner":       blog.Banner,
		"des":          blog.Des,
		"content":      blog.Content,
		"tags":         blog.Tags,
		"draft":        blog.Draft,
		"published_at": blog.PublishedAt,
		"updated_at":   blog.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", blog.BlogID, ErrNotFound)
	}
	return nil
}

func (r *GormBlogRepository) DeleteBlog(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("blog_id = ?", id).Delete(&models.Blog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormBlogRepository) ListBlogs(ctx context.Context, filter models.BlogFilter, w models.Window) ([]models.Blog, error) {
	blogs := []models.Blog{}
	err := r.db.WithContext(ctx).Scopes(blogScope(filter)).
		Order("published_at DESC, blog_id DESC").
		Offset(int(w.Skip)).Limit(int(w.Limit)).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}

	authors := make([]string, 0, len(blogs))
	for _, b := range blogs {
		authors = append(authors, b.Author)
	}
	summaries, err := userSummaries(ctx, r.db, authors)
	if err != nil {
		return nil, err
	}
	for i := range blogs {
		if s, ok := summaries[blogs[i].Author]; ok {
			blogs[i].AuthorInfo = &s
		}
	}
	return blogs, nil
}

func (r *GormBlogRepository) CountBlogs(ctx context.Context, filter models.BlogFilter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Scopes(blogScope(filter)).Count(&count).Error
	return count, err
}

func (r *GormBlogRepository) IncrementActivity(ctx context.Context, id string, field models.ActivityField, delta int) error {
	column := "activity_" + string(field)
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("blog_id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormBlogRepository) AttachComment(ctx context.Context, id, commentID string, root bool) error {
	return r.editComments(ctx, id, 1, root, func(ids []string) []string {
		return append(ids, commentID)
	})
}

func (r *GormBlogRepository) DetachComment(ctx context.Context, id, commentID string, root bool) error {
	return r.editComments(ctx, id, -1, root, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(c string) bool { return c == commentID })
	})
}

// editComments rewrites the comment list and moves the comment counters in
// a single row update.
func (r *GormBlogRepository) editComments(ctx context.Context, id string, delta int, root bool, edit func([]string) []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var blog models.Blog
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("blog_id", "comments").First(&blog, "blog_id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("blog %s: %w", id, ErrNotFound)
			}
			return err
		}

		updates := map[string]interface{}{
			"comments":                datatypes.JSONSlice[string](edit([]string(blog.Comments))),
			"activity_total_comments": gorm.Expr("activity_total_comments + ?", delta),
		}
		if root {
			updates["activity_total_parent_comments"] = gorm.Expr("activity_total_parent_comments + ?", delta)
		}
		return tx.Model(&models.Blog{}).Where("blog_id = ?", id).UpdateColumns(updates).Error
	})
}

func blogScope(filter models.BlogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("draft = ?", filter.Draft)
		if filter.Author != "" {
			db = db.Where("author = ?", filter.Author)
		}
		return db
	}
}

// userSummaries resolves user ids to their public projection in one query.
func userSummaries(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}
