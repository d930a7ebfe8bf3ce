package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository for PostgreSQL and SQLite
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) IncrementAccount(ctx context.Context, id string, field models.AccountField, delta int) error {
	column := "account_" + string(field)
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateProfile replaces the personal info of a user; account counters are left alone.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, info models.PersonalInfo) error {
	var taken int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("personal_username = ? AND id <> ?", info.Username, id).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("%s: %w", info.Username, ErrUsernameTaken)
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"personal_fullname":    info.Fullname,
		"personal_username":    info.Username,
		"personal_profile_img": info.ProfileImg,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
