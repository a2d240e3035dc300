package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"melodex/model"
)

// CatalogRepository defines the interface for catalog data operations:
// tracks plus their artist/album back-references.
type CatalogRepository interface {
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetTrackByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Track, error)
	GetTrackByTitle(ctx context.Context, title string) (*model.Track, error)
	// ListTracks returns tracks ordered by id ascending. Offset/limit bounds
	// are the caller's responsibility.
	ListTracks(ctx context.Context, offset, limit int) ([]*model.Track, error)
	// SearchTracks matches the query case-insensitively as a substring of the
	// track title or the artist name, ordered by track id ascending.
	SearchTracks(ctx context.Context, query string) ([]*model.Track, error)
	GetTracksByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Track, error)
	GetOrCreateArtist(ctx context.Context, name string) (*model.Artist, error)
	GetOrCreateAlbum(ctx context.Context, title string, artistID int64) (*model.Album, error)
	CreateTrack(ctx context.Context, title string, duration int, previewURL, artistName, albumName string) (*model.Track, error)
}

// sqlCatalogRepository implements CatalogRepository over database/sql.
type sqlCatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new sqlCatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &sqlCatalogRepository{db: db}
}

// trackSelect joins tracks with their artist and album so a single query
// yields the full response graph.
const trackSelect = `
	SELECT t.id, t.title, t.duration, t.preview_url, t.artist_id, t.album_id,
	       ar.id, ar.name,
	       al.id, al.title, al.artist_id
	FROM tracks t
	JOIN artists ar ON ar.id = t.artist_id
	JOIN albums al ON al.id = t.album_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(s rowScanner) (*model.Track, error) {
	track := &model.Track{Artist: &model.Artist{}, Album: &model.Album{}}
	err := s.Scan(
		&track.ID, &track.Title, &track.Duration, &track.PreviewURL, &track.ArtistID, &track.AlbumID,
		&track.Artist.ID, &track.Artist.Name,
		&track.Album.ID, &track.Album.Title, &track.Album.ArtistID,
	)
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (r *sqlCatalogRepository) getTrack(ctx context.Context, q dbtx, where string, args ...interface{}) (*model.Track, error) {
	row := q.QueryRowContext(ctx, trackSelect+" WHERE "+where, args...)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track row: %w", err)
	}
	return track, nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *sqlCatalogRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	return r.getTrack(ctx, r.db, "t.id = ?", id)
}

// GetTrackByIDTx is GetTrackByID inside an existing transaction.
func (r *sqlCatalogRepository) GetTrackByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Track, error) {
	return r.getTrack(ctx, tx, "t.id = ?", id)
}

// GetTrackByTitle retrieves a track by exact title. Returns (nil, nil) when
// absent. Used by the seeder's per-title idempotence check.
func (r *sqlCatalogRepository) GetTrackByTitle(ctx context.Context, title string) (*model.Track, error) {
	return r.getTrack(ctx, r.db, "t.title = ?", title)
}

func (r *sqlCatalogRepository) queryTracks(ctx context.Context, query string, args ...interface{}) ([]*model.Track, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during track rows iteration: %w", err)
	}
	return tracks, nil
}

// ListTracks returns a page of tracks ordered by id ascending. The schema
// gives no other ordering, so primary key order keeps paging deterministic.
func (r *sqlCatalogRepository) ListTracks(ctx context.Context, offset, limit int) ([]*model.Track, error) {
	return r.queryTracks(ctx, trackSelect+" ORDER BY t.id ASC LIMIT ? OFFSET ?", limit, offset)
}

// SearchTracks performs a case-insensitive substring search over track titles
// and artist names. Results are ordered by track id for determinism.
func (r *sqlCatalogRepository) SearchTracks(ctx context.Context, query string) ([]*model.Track, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return r.queryTracks(ctx,
		trackSelect+" WHERE LOWER(t.title) LIKE ? OR LOWER(ar.name) LIKE ? ORDER BY t.id ASC",
		pattern, pattern)
}

// GetTracksByPlaylistID returns the tracks referenced by a playlist's
// membership rows, ordered by track id ascending.
func (r *sqlCatalogRepository) GetTracksByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	query := trackSelect + `
	JOIN playlist_tracks pt ON pt.track_id = t.id
	WHERE pt.playlist_id = ?
	ORDER BY t.id ASC`
	return r.queryTracks(ctx, query, playlistID)
}

// GetOrCreateArtist returns the artist with the given name, creating it if
// absent. The unique index on artists.name makes this race-safe: a losing
// insert falls back to reading the winner's row.
func (r *sqlCatalogRepository) GetOrCreateArtist(ctx context.Context, name string) (*model.Artist, error) {
	artist := &model.Artist{Name: name}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin artist upsert transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, "SELECT id FROM artists WHERE name = ?", name).Scan(&artist.ID)
	if err == nil {
		return artist, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up artist %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO artists (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost a concurrent race; the row exists now.
			tx.Rollback()
			if err := r.db.QueryRowContext(ctx, "SELECT id FROM artists WHERE name = ?", name).Scan(&artist.ID); err != nil {
				return nil, fmt.Errorf("failed to re-read artist %q after duplicate insert: %w", name, err)
			}
			return artist, nil
		}
		return nil, fmt.Errorf("failed to insert artist %q: %w", name, err)
	}

	artist.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for artist: %w", err)
	}
	return artist, tx.Commit()
}

// GetOrCreateAlbum returns the album with the given (title, artist) pair,
// creating it if absent.
func (r *sqlCatalogRepository) GetOrCreateAlbum(ctx context.Context, title string, artistID int64) (*model.Album, error) {
	album := &model.Album{Title: title, ArtistID: artistID}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin album upsert transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, "SELECT id FROM albums WHERE title = ? AND artist_id = ?", title, artistID).Scan(&album.ID)
	if err == nil {
		return album, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up album %q: %w", title, err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO albums (title, artist_id) VALUES (?, ?)", title, artistID)
	if err != nil {
		if isDuplicateKey(err) {
			tx.Rollback()
			if err := r.db.QueryRowContext(ctx, "SELECT id FROM albums WHERE title = ? AND artist_id = ?", title, artistID).Scan(&album.ID); err != nil {
				return nil, fmt.Errorf("failed to re-read album %q after duplicate insert: %w", title, err)
			}
			return album, nil
		}
		if isForeignKey(err) {
			return nil, fmt.Errorf("album %q references missing artist %d: %w", title, artistID, ErrConstraint)
		}
		return nil, fmt.Errorf("failed to insert album %q: %w", title, err)
	}

	album.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for album: %w", err)
	}
	return album, tx.Commit()
}

// CreateTrack resolves the artist and album by get-or-create, then inserts
// the track. The cascade is idempotent on artist name and (album title,
// artist) but always inserts a new track row; callers wanting per-title
// idempotence check GetTrackByTitle first.
func (r *sqlCatalogRepository) CreateTrack(ctx context.Context, title string, duration int, previewURL, artistName, albumName string) (*model.Track, error) {
	artist, err := r.GetOrCreateArtist(ctx, artistName)
	if err != nil {
		return nil, err
	}
	album, err := r.GetOrCreateAlbum(ctx, albumName, artist.ID)
	if err != nil {
		return nil, err
	}

	query := "INSERT INTO tracks (title, duration, preview_url, artist_id, album_id) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, title, duration, previewURL, artist.ID, album.ID)
	if err != nil {
		if isForeignKey(err) {
			return nil, fmt.Errorf("track %q failed referential integrity: %w", title, ErrConstraint)
		}
		return nil, fmt.Errorf("failed to insert track %q: %w", title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for track: %w", err)
	}

	return &model.Track{
		ID:         id,
		Title:      title,
		Duration:   duration,
		PreviewURL: previewURL,
		ArtistID:   artist.ID,
		AlbumID:    album.ID,
		Artist:     artist,
		Album:      album,
	}, nil
}
