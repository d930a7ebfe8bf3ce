package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the author/reader profile. AccountInfo counters are only ever
// changed as a side effect of blog and comment operations.
type User struct {
	ID           string       `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	PersonalInfo PersonalInfo `json:"personal_info" bson:"personal_info" gorm:"embedded;embeddedPrefix:personal_"`
	AccountInfo  AccountInfo  `json:"account_info" bson:"account_info" gorm:"embedded;embeddedPrefix:account_"`
	JoinedAt     time.Time    `json:"joinedAt" bson:"joinedAt"`
}

type PersonalInfo struct {
	Fullname   string `json:"fullname" bson:"fullname"`
	Username   string `json:"username" bson:"username" gorm:"uniqueIndex;size:64"`
	ProfileImg string `json:"profile_img" bson:"profile_img"`
}

type AccountInfo struct {
	TotalPosts int `json:"total_posts" bson:"total_posts"`
	TotalReads int `json:"total_reads" bson:"total_reads"`
}

// AccountField names one counter of AccountInfo.
type AccountField string

const (
	AccountTotalPosts AccountField = "total_posts"
	AccountTotalReads AccountField = "total_reads"
)

// UserSummary is the public projection populated into comments, notifications and blogs.
type UserSummary struct {
	ID         string `json:"_id" bson:"_id"`
	Fullname   string `json:"fullname" bson:"fullname"`
	Username   string `json:"username" bson:"username"`
	ProfileImg string `json:"profile_img" bson:"profile_img"`
}

// Summary returns the public projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Fullname:   u.PersonalInfo.Fullname,
		Username:   u.PersonalInfo.Username,
		ProfileImg: u.PersonalInfo.ProfileImg,
	}
}

// Caller is the verified identity attached to a request by the auth middleware.
// Fullname and ProfileImg are filled only when the identity provider shares them.
type Caller struct {
	UserID     string
	IsAdmin    bool
	Fullname   string
	ProfileImg string
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// SyncProfileRequest is the profile a signed-in user asks to be stored under their id.
type SyncProfileRequest struct {
	Fullname   string `json:"fullname" validate:"max=100"`
	Username   string `json:"username" validate:"required,min=3,max=64"`
	ProfileImg string `json:"profile_img" validate:"omitempty,url"`
}
