package catalog

import (
	"encoding/json"
	"net/http"
	"strings"
)

type invalidator interface {
	Invalidate(name string)
	InvalidateAll()
}

// Handler exposes the cache-clear hook to operators.
type Handler struct {
	cache invalidator
}

func NewHandler(cache invalidator) *Handler {
	return &Handler{cache: cache}
}

// Invalidate handles POST /admin/catalog/invalidate?name=. Without a name
// every cached document is dropped.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	scope := strings.TrimSpace(r.URL.Query().Get("name"))
	if scope == "" {
		h.cache.InvalidateAll()
		scope = "all"
	} else {
		h.cache.Invalidate(scope)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "invalidated", "scope": scope})
}
