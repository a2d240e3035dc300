package server

import (
	"fmt"
	"net/http"
)

// SeedHandler bulk-loads the bundled catalog dataset. Registered only when
// dev routes are enabled; idempotent per track title.
func (h *APIHandler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	count := h.seeder.Seed(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Database seeded successfully with %d tracks.", count),
	})
}
