package playlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

var (
	// ErrPlaylistNotFound indicates the playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrTrackNotFound indicates the referenced track does not exist.
	ErrTrackNotFound = errors.New("track not found")

	// ErrNotOwner indicates the caller is authenticated but does not own the
	// playlist.
	ErrNotOwner = errors.New("playlist is owned by another user")
)

// Service orchestrates playlist mutations, enforcing ownership. Existence is
// always checked before ownership, and the track is resolved only after both,
// so callers see not-found before forbidden. Each mutation runs its checks
// and its write in one transaction.
type Service struct {
	playlists repository.PlaylistRepository
	catalog   repository.CatalogRepository
}

// NewService creates a playlist Service.
func NewService(playlists repository.PlaylistRepository, catalog repository.CatalogRepository) *Service {
	return &Service{playlists: playlists, catalog: catalog}
}

// load resolves a playlist together with its full track list.
func (s *Service) load(ctx context.Context, id int64) (*model.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, ErrPlaylistNotFound
	}
	tracks, err := s.catalog.GetTracksByPlaylistID(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist.Tracks = tracks
	return playlist, nil
}

// Create makes a new, empty playlist owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, name string) (*model.Playlist, error) {
	id, err := s.playlists.CreatePlaylist(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	logger.Info("Playlist created",
		logger.Int64("playlistId", id), logger.Int64("userId", userID), logger.String("name", name))
	return s.load(ctx, id)
}

// Get returns the playlist with its tracks, or ErrPlaylistNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*model.Playlist, error) {
	return s.load(ctx, id)
}

// ListForUser returns all playlists owned by userID with tracks resolved.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	playlists, err := s.playlists.GetPlaylistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range playlists {
		tracks, err := s.catalog.GetTracksByPlaylistID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Tracks = tracks
	}
	return playlists, nil
}

// resolveOwned fetches the playlist inside tx and enforces ownership.
// Existence takes precedence over authorization.
func (s *Service) resolveOwned(ctx context.Context, tx *sql.Tx, userID, playlistID int64) (*model.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByIDTx(ctx, tx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, ErrPlaylistNotFound
	}
	if playlist.UserID != userID {
		return nil, ErrNotOwner
	}
	return playlist, nil
}

// Rename changes the playlist name. Renaming to the current name is a no-op
// that still succeeds.
func (s *Service) Rename(ctx context.Context, userID, playlistID int64, newName string) (*model.Playlist, error) {
	tx, err := s.playlists.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rename transaction: %w", err)
	}
	defer s.playlists.RollbackTx(tx)

	if _, err := s.resolveOwned(ctx, tx, userID, playlistID); err != nil {
		return nil, err
	}
	if err := s.playlists.RenamePlaylistTx(ctx, tx, playlistID, newName); err != nil {
		return nil, err
	}
	if err := s.playlists.CommitTx(tx); err != nil {
		return nil, fmt.Errorf("failed to commit rename: %w", err)
	}
	return s.load(ctx, playlistID)
}

// Delete removes the playlist and its membership rows. Irreversible.
func (s *Service) Delete(ctx context.Context, userID, playlistID int64) error {
	tx, err := s.playlists.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer s.playlists.RollbackTx(tx)

	if _, err := s.resolveOwned(ctx, tx, userID, playlistID); err != nil {
		return err
	}
	if err := s.playlists.DeletePlaylistTx(ctx, tx, playlistID); err != nil {
		return err
	}
	if err := s.playlists.CommitTx(tx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	logger.Info("Playlist deleted",
		logger.Int64("playlistId", playlistID), logger.Int64("userId", userID))
	return nil
}

// AddTrack adds trackID to the playlist's membership set. Adding a track that
// is already present is a no-op, not an error, so the call is safe to retry.
func (s *Service) AddTrack(ctx context.Context, userID, playlistID, trackID int64) (*model.Playlist, error) {
	tx, err := s.playlists.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin add-track transaction: %w", err)
	}
	defer s.playlists.RollbackTx(tx)

	if _, err := s.resolveOwned(ctx, tx, userID, playlistID); err != nil {
		return nil, err
	}
	track, err := s.catalog.GetTrackByIDTx(ctx, tx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}

	inserted, err := s.playlists.AddTrackTx(ctx, tx, playlistID, trackID)
	if err != nil {
		return nil, err
	}
	if err := s.playlists.CommitTx(tx); err != nil {
		return nil, fmt.Errorf("failed to commit add-track: %w", err)
	}
	if inserted {
		logger.Info("Track added to playlist",
			logger.Int64("playlistId", playlistID), logger.Int64("trackId", trackID))
	}
	return s.load(ctx, playlistID)
}

// RemoveTrack deletes trackID from the playlist's membership set. Removing a
// track that is not a member is a no-op, not an error.
func (s *Service) RemoveTrack(ctx context.Context, userID, playlistID, trackID int64) (*model.Playlist, error) {
	tx, err := s.playlists.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin remove-track transaction: %w", err)
	}
	defer s.playlists.RollbackTx(tx)

	if _, err := s.resolveOwned(ctx, tx, userID, playlistID); err != nil {
		return nil, err
	}
	track, err := s.catalog.GetTrackByIDTx(ctx, tx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}

	removed, err := s.playlists.RemoveTrackTx(ctx, tx, playlistID, trackID)
	if err != nil {
		return nil, err
	}
	if err := s.playlists.CommitTx(tx); err != nil {
		return nil, fmt.Errorf("failed to commit remove-track: %w", err)
	}
	if removed {
		logger.Info("Track removed from playlist",
			logger.Int64("playlistId", playlistID), logger.Int64("trackId", trackID))
	}
	return s.load(ctx, playlistID)
}
