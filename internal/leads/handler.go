package leads

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Handler serves the admin lead listing.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListLeadsResponse is the body of GET /admin/leads.
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads pages through captured leads. Out-of-range limit or offset
// values fall back to the defaults instead of failing the request.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := ListFilter{Limit: limit, Offset: offset}.withDefaults()

	found, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("lead listing failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to list leads"})
		return
	}
	if found == nil {
		found = []*Lead{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListLeadsResponse{
		Leads:  found,
		Count:  len(found),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}
