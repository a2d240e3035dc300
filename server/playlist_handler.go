package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"melodex/logger"
)

// PlaylistRequest carries the playlist name for create and rename.
type PlaylistRequest struct {
	Name string `json:"name"`
}

// CreatePlaylistHandler creates an empty playlist for the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Playlist name is required")
		return
	}

	created, err := h.playlists.Create(r.Context(), userID, req.Name)
	if err != nil {
		logger.Error("Failed to create playlist", logger.ErrorField(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetPlaylistsHandler lists the caller's playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlists, err := h.playlists.ListForUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list playlists", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// RenamePlaylistHandler renames a playlist owned by the caller.
func (h *APIHandler) RenamePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	playlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid playlist id")
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Playlist name is required")
		return
	}

	renamed, err := h.playlists.Rename(r.Context(), userID, playlistID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

// DeletePlaylistHandler deletes a playlist owned by the caller.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	playlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid playlist id")
		return
	}

	if err := h.playlists.Delete(r.Context(), userID, playlistID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTrackToPlaylistHandler adds a track to a playlist owned by the caller.
func (h *APIHandler) AddTrackToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	playlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid playlist id")
		return
	}
	trackID, err := pathID(r, "track_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid track id")
		return
	}

	updated, err := h.playlists.AddTrack(r.Context(), userID, playlistID, trackID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveTrackFromPlaylistHandler removes a track from a playlist owned by the caller.
func (h *APIHandler) RemoveTrackFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	playlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid playlist id")
		return
	}
	trackID, err := pathID(r, "track_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid track id")
		return
	}

	updated, err := h.playlists.RemoveTrack(r.Context(), userID, playlistID, trackID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
