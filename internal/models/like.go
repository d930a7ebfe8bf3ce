package models

// ToggleLikeRequest defines the request body for liking or unliking a blog.
// IsLikedByUser is the like state the client currently shows.
type ToggleLikeRequest struct {
	IsLikedByUser bool `json:"is_liked_by_user"`
}
