package models

import (
	"time"

	"gorm.io/datatypes"
)

// Comment is a node of a blog's comment thread. Parent is the back edge and
// Children the ordered forward edge; IsReply is true exactly when Parent is set.
// Children is a JSON column under GORM and a BSON array in Mongo, as on Blog.
type Comment struct {
	ID          string                      `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	BlogID      string                      `json:"blog_id" bson:"blog_id" gorm:"index;size:128"`
	BlogAuthor  string                      `json:"blog_author" bson:"blog_author" gorm:"size:64"`
	Comment     string                      `json:"comment" bson:"comment" gorm:"type:text"`
	CommentedBy string                      `json:"commented_by" bson:"commented_by" gorm:"index;size:64"`
	Parent      *string                     `json:"parent,omitempty" bson:"parent,omitempty" gorm:"index;size:64"`
	IsReply     bool                        `json:"isReply" bson:"isReply" gorm:"index"`
	Children    datatypes.JSONSlice[string] `json:"children" bson:"children"`
	CommentedAt time.Time                   `json:"commentedAt" bson:"commentedAt" gorm:"index"`

	Commenter *UserSummary `json:"commenter,omitempty" bson:"commenter,omitempty" gorm:"-"`
}

// IsRoot reports whether the comment starts a thread.
func (c *Comment) IsRoot() bool {
	return c.Parent == nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Comment        string `json:"comment" validate:"required,max=1000"`
	BlogAuthor     string `json:"blog_author,omitempty"`
	ReplyingTo     string `json:"replying_to,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}
