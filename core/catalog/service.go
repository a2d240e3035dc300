package catalog

import (
	"context"
	"errors"
	"unicode/utf8"

	"melodex/model"
	"melodex/repository"
)

var (
	// ErrTrackNotFound indicates the requested track does not exist.
	ErrTrackNotFound = errors.New("track not found")

	// ErrQueryTooShort indicates a search query below the minimum length.
	ErrQueryTooShort = errors.New("search query must be at least 3 characters")
)

const (
	// MaxListLimit caps page size to bound response size.
	MaxListLimit = 100

	// MinQueryLength is the shortest accepted search query.
	MinQueryLength = 3
)

// Service exposes read access to the track catalog with input bounds applied.
type Service struct {
	repo repository.CatalogRepository
}

// NewService creates a catalog Service.
func NewService(repo repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// GetTrack returns the track with the given id or ErrTrackNotFound.
func (s *Service) GetTrack(ctx context.Context, id int64) (*model.Track, error) {
	track, err := s.repo.GetTrackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}
	return track, nil
}

// ListTracks returns a page of the catalog ordered by track id ascending.
// Negative offsets are treated as zero; the limit defaults to and is capped
// at MaxListLimit.
func (s *Service) ListTracks(ctx context.Context, offset, limit int) ([]*model.Track, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListTracks(ctx, offset, limit)
}

// SearchTracks matches query case-insensitively against track titles and
// artist names. Queries shorter than MinQueryLength are rejected with
// ErrQueryTooShort.
func (s *Service) SearchTracks(ctx context.Context, query string) ([]*model.Track, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	return s.repo.SearchTracks(ctx, query)
}
