package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/service"
)

type SavingsHandler struct {
	service SavingsServiceInterface
}

func NewSavingsHandler(service SavingsServiceInterface) *SavingsHandler {
	return &SavingsHandler{service: service}
}

// RecordSavingResponse bundles the created event with the freshly derived
// stats so the frontend can update in one round trip.
type RecordSavingResponse struct {
	Event *model.SavingEvent `json:"event"`
	Stats *model.Stats       `json:"stats,omitempty"`
}

func (h *SavingsHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var input service.SavingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, stats, err := h.service.RecordSaving(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, RecordSavingResponse{Event: event, Stats: stats})
}
