package interactions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Handler serves the admin interaction log listing.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type listResponse struct {
	Interactions []Record `json:"interactions"`
	Count        int      `json:"count"`
	Limit        int      `json:"limit"`
}

// List handles GET /admin/interactions?phone=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= MaxListLimit {
			limit = n
		}
	}

	records, err := h.store.List(r.Context(), phone, limit)
	if err != nil {
		h.logger.Error("failed to list interactions", "phone", logging.MaskPhone(phone), "error", err)
		http.Error(w, "failed to list interactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listResponse{Interactions: records, Count: len(records), Limit: limit})
}
