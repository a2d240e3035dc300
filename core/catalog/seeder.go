package catalog

import (
	"context"
	"encoding/json"
	"os"

	"melodex/logger"
	"melodex/repository"
)

// SeedTrack is one record of the bundled seed dataset.
type SeedTrack struct {
	Title      string `json:"title"`
	Duration   int    `json:"duration"`
	PreviewURL string `json:"preview_url"`
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name"`
}

// Seeder bulk-loads the catalog from a JSON file of SeedTrack records.
// Seeding is a development convenience: failures are logged and skipped
// rather than aborting.
type Seeder struct {
	repo repository.CatalogRepository
	path string
}

// NewSeeder creates a Seeder reading from the given file path.
func NewSeeder(repo repository.CatalogRepository, path string) *Seeder {
	return &Seeder{repo: repo, path: path}
}

// Seed inserts every record whose title is not already in the catalog and
// returns the number of newly created tracks. Each track's artist and album
// are resolved by get-or-create, so re-running is idempotent per title.
func (s *Seeder) Seed(ctx context.Context) int {
	data, err := os.ReadFile(s.path)
	if err != nil {
		logger.Warn("Seed data file not readable", logger.String("path", s.path), logger.ErrorField(err))
		return 0
	}

	var records []SeedTrack
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Seed data file is malformed", logger.String("path", s.path), logger.ErrorField(err))
		return 0
	}

	count := 0
	for _, rec := range records {
		existing, err := s.repo.GetTrackByTitle(ctx, rec.Title)
		if err != nil {
			logger.Warn("Skipping seed record, title lookup failed",
				logger.String("title", rec.Title), logger.ErrorField(err))
			continue
		}
		if existing != nil {
			continue
		}

		if _, err := s.repo.CreateTrack(ctx, rec.Title, rec.Duration, rec.PreviewURL, rec.ArtistName, rec.AlbumName); err != nil {
			logger.Warn("Skipping seed record, insert failed",
				logger.String("title", rec.Title), logger.ErrorField(err))
			continue
		}
		count++
	}

	logger.Info("Catalog seeding finished", logger.Int("inserted", count), logger.String("path", s.path))
	return count
}
