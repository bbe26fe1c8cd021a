package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ifscdir/ifscdir/internal/directory"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	svc            *directory.Service
	version        string
	graphqlEnabled bool
}

// New creates a new Handlers instance
func New(svc *directory.Service, version string, graphqlEnabled bool) *Handlers {
	return &Handlers{
		svc:            svc,
		version:        version,
		graphqlEnabled: graphqlEnabled,
	}
}

// writeJSON writes v as a JSON response with the given status code
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// jsonError writes an error response as JSON
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// respondErr maps a query-layer error to an HTTP response: caller mistakes
// become 400, everything else is logged and becomes 500.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var invalid directory.InvalidArgumentError
	if errors.As(err, &invalid) {
		h.jsonError(w, invalid.Error(), http.StatusBadRequest)
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	h.jsonError(w, "Internal server error", http.StatusInternalServerError)
}

// pagingParams reads page and page_size query params. Absent params fall back
// to defaults; non-numeric values are caller mistakes. Range checks are the
// query layer's job, so out-of-range values pass through untouched.
func pagingParams(r *http.Request) (page, pageSize int, err error) {
	page = 1
	pageSize = directory.DefaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, directory.InvalidArgumentError{Field: "page", Message: "page must be an integer"}
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		pageSize, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, directory.InvalidArgumentError{Field: "page_size", Message: "page_size must be an integer"}
		}
	}
	return page, pageSize, nil
}

// Root serves the API index, including whether GraphQL is mounted.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	graphql := "not available"
	if h.graphqlEnabled {
		graphql = "/graphql"
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Indian Bank Branches API",
		"version": h.version,
		"graphql": graphql,
		"endpoints": map[string]string{
			"banks":    "/api/banks",
			"branches": "/api/branches",
			"stats":    "/api/stats",
			"health":   "/health",
		},
	})
}

// Health serves the health check endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": h.version})
}

// Stats serves dataset totals
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
