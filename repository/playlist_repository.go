package repository

import (
	"context"
	"database/sql"
	"fmt"

	"melodex/model"
)

// PlaylistRepository defines the interface for playlist data operations.
// Membership lives in an explicit playlist_tracks join table; the unique
// (playlist_id, track_id) primary key is the structural dedup guarantee.
//
// Mutations come in Tx variants so the service layer can wrap an ownership
// check and its mutation in a single transaction.
type PlaylistRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error

	CreatePlaylist(ctx context.Context, userID int64, name string) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetPlaylistByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Playlist, error)
	GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)
	RenamePlaylistTx(ctx context.Context, tx *sql.Tx, id int64, name string) error
	DeletePlaylistTx(ctx context.Context, tx *sql.Tx, id int64) error
	// AddTrackTx inserts the membership pair. Returns false with no error
	// when the pair was already present.
	AddTrackTx(ctx context.Context, tx *sql.Tx, playlistID, trackID int64) (bool, error)
	// RemoveTrackTx deletes the membership pair. Returns false with no error
	// when the pair was absent.
	RemoveTrackTx(ctx context.Context, tx *sql.Tx, playlistID, trackID int64) (bool, error)
}

// sqlPlaylistRepository implements PlaylistRepository over database/sql.
type sqlPlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new sqlPlaylistRepository.
func NewPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &sqlPlaylistRepository{db: db}
}

// BeginTx starts a new transaction.
func (r *sqlPlaylistRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// RollbackTx rolls back a transaction, tolerating an already-finished one.
func (r *sqlPlaylistRepository) RollbackTx(tx *sql.Tx) {
	if tx != nil {
		tx.Rollback()
	}
}

// CommitTx commits a transaction.
func (r *sqlPlaylistRepository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// CreatePlaylist inserts a playlist owned by userID with empty membership.
func (r *sqlPlaylistRepository) CreatePlaylist(ctx context.Context, userID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO playlists (name, user_id) VALUES (?, ?)", name, userID)
	if err != nil {
		if isForeignKey(err) {
			return 0, fmt.Errorf("playlist owner %d does not exist: %w", userID, ErrConstraint)
		}
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}
	return id, nil
}

func (r *sqlPlaylistRepository) getPlaylist(ctx context.Context, q dbtx, id int64) (*model.Playlist, error) {
	row := q.QueryRowContext(ctx, "SELECT id, name, user_id FROM playlists WHERE id = ?", id)
	playlist := &model.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.Name, &playlist.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist row for ID %d: %w", id, err)
	}
	return playlist, nil
}

// GetPlaylistByID retrieves a playlist by ID without resolving its tracks.
// Returns (nil, nil) when absent.
func (r *sqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	return r.getPlaylist(ctx, r.db, id)
}

// GetPlaylistByIDTx is GetPlaylistByID inside an existing transaction.
func (r *sqlPlaylistRepository) GetPlaylistByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Playlist, error) {
	return r.getPlaylist(ctx, tx, id)
}

// GetPlaylistsByUserID returns all playlists owned by userID, id ascending,
// without resolving tracks.
func (r *sqlPlaylistRepository) GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, user_id FROM playlists WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist := &model.Playlist{}
		if err := rows.Scan(&playlist.ID, &playlist.Name, &playlist.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan playlist in GetPlaylistsByUserID: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during playlist rows iteration: %w", err)
	}
	return playlists, nil
}

// RenamePlaylistTx updates the playlist name.
func (r *sqlPlaylistRepository) RenamePlaylistTx(ctx context.Context, tx *sql.Tx, id int64, name string) error {
	if _, err := tx.ExecContext(ctx, "UPDATE playlists SET name = ? WHERE id = ?", name, id); err != nil {
		return fmt.Errorf("failed to rename playlist %d: %w", id, err)
	}
	return nil
}

// DeletePlaylistTx removes the playlist and all of its membership rows.
func (r *sqlPlaylistRepository) DeletePlaylistTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist %d memberships: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}
	return nil
}

// AddTrackTx inserts the membership pair. A duplicate-key error means the
// pair already exists, which is reported as (false, nil) so retries are safe.
func (r *sqlPlaylistRepository) AddTrackTx(ctx context.Context, tx *sql.Tx, playlistID, trackID int64) (bool, error) {
	_, err := tx.ExecContext(ctx, "INSERT INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)", playlistID, trackID)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil // Already a member
		}
		if isForeignKey(err) {
			return false, fmt.Errorf("membership (%d, %d) failed referential integrity: %w", playlistID, trackID, ErrConstraint)
		}
		return false, fmt.Errorf("failed to insert membership (%d, %d): %w", playlistID, trackID, err)
	}
	return true, nil
}

// RemoveTrackTx deletes the membership pair if present.
func (r *sqlPlaylistRepository) RemoveTrackTx(ctx context.Context, tx *sql.Tx, playlistID, trackID int64) (bool, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to delete membership (%d, %d): %w", playlistID, trackID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for membership delete: %w", err)
	}
	return affected > 0, nil
}
