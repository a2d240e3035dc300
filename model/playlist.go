package model

// Playlist represents a user-owned playlist. Tracks is the resolved
// membership set; it is never nil in API responses.
type Playlist struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	UserID int64    `json:"user_id"`
	Tracks []*Track `json:"tracks"`
}
