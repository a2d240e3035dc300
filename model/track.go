package model

// Artist represents a recording artist in the catalog.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Album represents an album belonging to exactly one artist.
type Album struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	ArtistID int64   `json:"artist_id"`
	Artist   *Artist `json:"artist,omitempty"`
}

// Track represents a catalog track. Duration is in seconds; the preview URL
// points at an externally hosted clip, no audio is stored by this service.
type Track struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Duration   int     `json:"duration"`
	PreviewURL string  `json:"preview_url"`
	ArtistID   int64   `json:"artist_id"`
	AlbumID    int64   `json:"album_id"`
	Artist     *Artist `json:"artist,omitempty"`
	Album      *Album  `json:"album,omitempty"`
}
