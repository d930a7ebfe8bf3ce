package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/quillpress/backend/internal/models"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrUsernameTaken is returned when a profile update collides with another user's username.
var ErrUsernameTaken = errors.New("username already taken")

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	GetBlogByID(ctx context.Context, id string) (*models.Blog, error)
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	ListBlogs(ctx context.Context, filter models.BlogFilter, w models.Window) ([]models.Blog, error)
	CountBlogs(ctx context.Context, filter models.BlogFilter) (int64, error)
	IncrementActivity(ctx context.Context, id string, field models.ActivityField, delta int) error
	// AttachComment appends commentID to the blog's comment list and bumps
	// total_comments (and total_parent_comments for roots) in one update.
	AttachComment(ctx context.Context, id, commentID string, root bool) error
	// DetachComment mirrors AttachComment.
	DetachComment(ctx context.Context, id, commentID string, root bool) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	AppendChild(ctx context.Context, parentID, childID string) error
	RemoveChild(ctx context.Context, parentID, childID string) error
	ListTopLevel(ctx context.Context, blogID string, w models.Window) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID string, w models.Window) ([]models.Comment, error)
	DeleteCommentsByBlog(ctx context.Context, blogID string) (int64, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	Exists(ctx context.Context, filter models.NotificationFilter) (bool, error)
	List(ctx context.Context, filter models.NotificationFilter, w models.Window) ([]models.Notification, error)
	Count(ctx context.Context, filter models.NotificationFilter) (int64, error)
	DeleteOne(ctx context.Context, filter models.NotificationFilter) error
	DeleteMany(ctx context.Context, filter models.NotificationFilter) (int64, error)
	SetReply(ctx context.Context, id, replyID string) error
	// UnsetReply clears the reply reference on every notification pointing at replyID.
	UnsetReply(ctx context.Context, replyID string) (int64, error)
	MarkSeen(ctx context.Context, ids []string) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	// EnsureUser inserts user unless one with the same ID exists and reports
	// whether it inserted.
	EnsureUser(ctx context.Context, user *models.User) (bool, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, info models.PersonalInfo) error
	IncrementAccount(ctx context.Context, id string, field models.AccountField, delta int) error
}

// Ledger records claims on idempotency keys of bookkeeping steps.
type Ledger interface {
	// Claim returns false when key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Blogs         BlogRepository
	Comments      CommentRepository
	Notifications NotificationRepository
	Users         UserRepository
	Ledger        Ledger
}
