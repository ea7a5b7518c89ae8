package api

import (
	"net/http"

	service "github.com/okian/cricscore/internal/app"
)

// VenuesHandler serves the venue catalog.
type VenuesHandler struct {
	deps Dependencies
}

// NewVenuesHandler creates a new venues handler.
func NewVenuesHandler(deps Dependencies) *VenuesHandler {
	return &VenuesHandler{deps: deps}
}

type suggestResponse struct {
	Venue string `json:"venue"`
	Exact bool   `json:"exact"`
}

// HandleGetVenues handles GET /venues requests. With country and venue
// query parameters it resolves the closest known venue name instead.
func (h *VenuesHandler) HandleGetVenues(w http.ResponseWriter, r *http.Request) {
	cat, err := h.deps.Venues(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Code:    "catalog_unavailable",
			Message: service.MsgCatalogLoad,
		})
		return
	}

	q := r.URL.Query()
	country, venue := q.Get("country"), q.Get("venue")
	if venue == "" {
		writeJSON(w, http.StatusOK, cat)
		return
	}
	if cat.Has(country, venue) {
		writeJSON(w, http.StatusOK, suggestResponse{Venue: venue, Exact: true})
		return
	}
	closest, ok := cat.Suggest(country, venue)
	if !ok {
		writeError(w, http.StatusNotFound, "venue_not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Venue: closest})
}
