package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"melodex/config"
	"melodex/core/auth"
	"melodex/core/catalog"
	"melodex/core/playlist"
	"melodex/logger"
	"melodex/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo  repository.UserRepository
	catalog   *catalog.Service
	playlists *playlist.Service
	seeder    *catalog.Seeder
	tokens    *auth.TokenManager
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	catalogSvc *catalog.Service,
	playlistSvc *playlist.Service,
	seeder *catalog.Seeder,
	tokens *auth.TokenManager,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:  userRepo,
		catalog:   catalogSvc,
		playlists: playlistSvc,
		seeder:    seeder,
		tokens:    tokens,
		cfg:       cfg,
	}
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// writeError sends a JSON error body in the shape {"detail": "..."}.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Not-found errors map before forbidden by construction: the services only
// return ErrNotOwner for playlists that exist.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playlist.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, "Playlist not found")
	case errors.Is(err, playlist.ErrTrackNotFound), errors.Is(err, catalog.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, "Track not found")
	case errors.Is(err, playlist.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Not authorized to modify this playlist")
	case errors.Is(err, catalog.ErrQueryTooShort):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrConstraint):
		writeError(w, http.StatusConflict, "Constraint violation")
	default:
		logger.Error("Unhandled service error", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// HealthHandler reports service liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Welcome to Melodex",
	})
}
