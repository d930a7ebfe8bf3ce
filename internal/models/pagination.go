package models

// Window is a skip/limit slice of a sorted listing.
type Window struct {
	Skip  int64
	Limit int64
}

// BlogFilter selects blogs. Zero-valued fields are ignored except Draft,
// which is always applied.
type BlogFilter struct {
	Author string
	Draft  bool
}
