package repositories

import (
	"context"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGormStore wires every repository against one SQL database.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Blogs:         NewGormBlogRepository(db),
		Comments:      NewGormCommentRepository(db),
		Notifications: NewGormNotificationRepository(db),
		Users:         NewGormUserRepository(db),
		Ledger:        NewGormLedger(db),
	}
}

// MigrateGorm creates or updates the tables of every aggregate.
func MigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Blog{},
		&models.Comment{},
		&models.Notification{},
		&models.LedgerEntry{},
	)
}

// GormLedger implements Ledger with a primary-keyed claims table.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Claim(ctx context.Context, key string) (bool, error) {
	entry := models.LedgerEntry{Key: key, ClaimedAt: time.Now()}
	res := l.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (l *GormLedger) Release(ctx context.Context, key string) error {
	return l.db.WithContext(ctx).Where(`"key" = ?`, key).Delete(&models.LedgerEntry{}).Error
}
