package models

import "time"

// NotificationType is the event a notification reports.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
)

// Notification tells NotificationFor that User acted on one of their blogs or comments.
type Notification struct {
	ID               string           `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	Type             NotificationType `json:"type" bson:"type" gorm:"size:16;index"`
	Blog             string           `json:"blog" bson:"blog" gorm:"index;size:128"`
	NotificationFor  string           `json:"notification_for" bson:"notification_for" gorm:"index;size:64"`
	User             string           `json:"user" bson:"user" gorm:"index;size:64"`
	Comment          *string          `json:"comment,omitempty" bson:"comment,omitempty" gorm:"index;size:64"`
	RepliedOnComment *string          `json:"replied_on_comment,omitempty" bson:"replied_on_comment,omitempty" gorm:"size:64"`
	Reply            *string          `json:"reply,omitempty" bson:"reply,omitempty" gorm:"index;size:64"`
	Seen             bool             `json:"seen" bson:"seen" gorm:"index"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt" gorm:"index"`

	Actor *UserSummary `json:"actor,omitempty" bson:"actor,omitempty" gorm:"-"`
}

// NotificationFilter selects notifications. Zero-valued fields are ignored.
type NotificationFilter struct {
	ID              string
	Types           []NotificationType
	Blog            string
	NotificationFor string
	User            string
	ExcludeUser     string
	Comment         string
	Reply           string
	Seen            *bool
}
