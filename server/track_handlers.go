package server

import (
	"errors"
	"net/http"
	"strconv"

	"melodex/core/catalog"
	"melodex/logger"

	"github.com/gorilla/mux"
)

// GetTracksHandler lists the catalog with skip/limit paging.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", catalog.MaxListLimit)

	tracks, err := h.catalog.ListTracks(r.Context(), skip, limit)
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// SearchTracksHandler searches track titles and artist names.
func (h *APIHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	tracks, err := h.catalog.SearchTracks(r.Context(), q)
	if err != nil {
		if errors.Is(err, catalog.ErrQueryTooShort) {
			writeServiceError(w, err)
			return
		}
		logger.Error("Failed to search tracks", logger.String("q", q), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to search tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// GetTrackHandler returns a single track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid track id")
		return
	}

	track, err := h.catalog.GetTrack(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// queryInt parses an integer query parameter, falling back on absence or
// malformed input.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

// pathID parses an int64 path variable.
func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}
