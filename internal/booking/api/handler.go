package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"venue-booking/internal/auth"
	"venue-booking/internal/booking"
	"venue-booking/internal/logger"
	"venue-booking/internal/models"
	"venue-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler translates booking outcomes into HTTP responses. The core never
// redirects or renders; every rejected operation carries its specific reason.
type Handler struct {
	Service *booking.BookingService
	Logger  *logger.Logger
}

func (h *Handler) ProposeEvent(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing viewer context", http.StatusUnauthorized)
		return
	}

	var req models.ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.Service.ProposeEvent(req, viewer.UserID)
	if err != nil {
		h.writeError(w, "could not propose event", err)
		return
	}

	h.Logger.LogBooking("PROPOSE", event.ID, fmt.Sprintf("venue %s on %s", event.VenueID, event.Date.Format("2006-01-02")))
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("event proposed", event))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.Service.GetEvent(eventID)
	if err != nil {
		h.writeError(w, "could not load event", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("event", event))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing viewer context", http.StatusUnauthorized)
		return
	}

	history := r.URL.Query().Get("history") == "true"

	events, err := h.Service.ListEvents(viewer, history)
	if err != nil {
		h.writeError(w, "could not list events", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("events", events))
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Service.ListVenues()
	if err != nil {
		h.writeError(w, "could not list venues", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("venues", venues))
}

func (h *Handler) DecideEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.Service.DecideEvent(eventID, req.Decision, req.Comment)
	if err != nil {
		h.writeError(w, "could not apply decision", err)
		return
	}

	h.Logger.LogTransition(event.ID, string(models.StatusPending), string(event.Status))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("decision applied", event))
}

func (h *Handler) SettleEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req models.SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.Service.SettleEvent(eventID, req.ReceiptRef)
	if err != nil {
		h.writeError(w, "could not settle event", err)
		return
	}

	h.Logger.LogTransition(event.ID, string(models.StatusApproved), string(models.StatusCompleted))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("event settled", event))
}

func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing viewer context", http.StatusUnauthorized)
		return
	}
	eventID := chi.URLParam(r, "eventID")

	outcome, event, err := h.Service.RegisterForEvent(eventID, viewer.UserID)
	if err != nil {
		h.writeError(w, "could not register", err)
		return
	}

	switch outcome {
	case booking.OutcomeRegistered:
		h.Logger.LogBooking("REGISTER", eventID, fmt.Sprintf("member %s admitted", viewer.UserID))
		writeJSON(w, http.StatusCreated, utils.OutcomeResponse(string(outcome), "registered", event))
	case booking.OutcomeAlreadyRegistered:
		writeJSON(w, http.StatusOK, utils.OutcomeResponse(string(outcome), "already registered for this event", event))
	case booking.OutcomeFull:
		writeJSON(w, http.StatusOK, utils.OutcomeResponse(string(outcome), "event is at capacity", nil))
	case booking.OutcomeNotOpen:
		writeJSON(w, http.StatusOK, utils.OutcomeResponse(string(outcome), "event is not open for registration", nil))
	}
}

func (h *Handler) AcceptCollaboration(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	clubID := chi.URLParam(r, "clubID")

	if err := h.Service.AcceptCollaboration(eventID, clubID); err != nil {
		h.writeError(w, "could not accept collaboration", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("collaboration accepted", nil))
}

func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.RunSweep(time.Now())
	if err != nil {
		h.writeError(w, "sweep failed", err)
		return
	}

	h.Logger.LogSweep(fmt.Sprintf("manual sweep completed %d events", count))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("sweep finished", map[string]int{"completed": count}))
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrEventNotFound),
		errors.Is(err, booking.ErrVenueNotFound):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrMissingReceipt):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrConflictDetected),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrWriteConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
	}
	writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
