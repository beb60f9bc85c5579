package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savestreak/backend/pkg/datetime"
)

type StatsHandler struct {
	service StatsServiceInterface
}

func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Optional asOf query parameter, defaulting to today.
	asOf := datetime.Today()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := datetime.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid asOf date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	stats, err := h.service.ComputeStats(r.Context(), userID, asOf)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
