package models

import (
	"time"

	"gorm.io/datatypes"
)

// Blog is a published (or draft) article together with its engagement counters.
// The datatypes.JSONSlice fields are one JSON column under GORM; as plain
// slices they encode to native BSON arrays, so the Mongo backend shares the
// same model.
type Blog struct {
	BlogID      string                      `json:"blog_id" bson:"_id" gorm:"primaryKey;size:128"`
	Title       string                      `json:"title" bson:"title"`
	Banner      string                      `json:"banner" bson:"banner"`
	Des         string                      `json:"des" bson:"des" gorm:"size:200"`
	Content     string                      `json:"content" bson:"content" gorm:"type:text"`
	Tags        datatypes.JSONSlice[string] `json:"tags" bson:"tags"`
	Author      string                      `json:"author" bson:"author" gorm:"index;size:64"`
	Activity    BlogActivity                `json:"activity" bson:"activity" gorm:"embedded;embeddedPrefix:activity_"`
	Comments    datatypes.JSONSlice[string] `json:"comments" bson:"comments"`
	Draft       bool                        `json:"draft" bson:"draft" gorm:"index"`
	PublishedAt time.Time                   `json:"publishedAt" bson:"publishedAt" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updatedAt" bson:"updatedAt"`

	AuthorInfo *UserSummary `json:"author_info,omitempty" bson:"author_info,omitempty" gorm:"-"`
}

// BlogActivity holds the denormalized counters of a blog.
type BlogActivity struct {
	TotalLikes          int `json:"total_likes" bson:"total_likes"`
	TotalComments       int `json:"total_comments" bson:"total_comments"`
	TotalReads          int `json:"total_reads" bson:"total_reads"`
	TotalParentComments int `json:"total_parent_comments" bson:"total_parent_comments"`
}

// ActivityField names one counter of BlogActivity.
type ActivityField string

const (
	ActivityTotalLikes          ActivityField = "total_likes"
	ActivityTotalComments       ActivityField = "total_comments"
	ActivityTotalReads          ActivityField = "total_reads"
	ActivityTotalParentComments ActivityField = "total_parent_comments"
)

// PublishBlogRequest defines the request body for creating or editing a blog
type PublishBlogRequest struct {
	BlogID  string   `json:"id,omitempty"`
	Title   string   `json:"title" validate:"required,max=200"`
	Banner  string   `json:"banner,omitempty" validate:"omitempty,url"`
	Des     string   `json:"des,omitempty" validate:"max=200"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty" validate:"max=10,dive,required"`
	Draft   bool     `json:"draft"`
}
