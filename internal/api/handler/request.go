// internal/api/handler/request.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"skillswap-ledger/internal/api/middleware"
	"skillswap-ledger/internal/service"
	"skillswap-ledger/internal/util"
)

// RequestHandler handles HTTP requests for the session request negotiator.
type RequestHandler struct {
	negotiator service.NegotiatorService
	logger     *slog.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(negotiator service.NegotiatorService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{negotiator: negotiator, logger: logger}
}

// CreateRequestBody represents the request body for sending a session request.
type CreateRequestBody struct {
	ReceiverID  int64     `json:"receiver_id"`
	SkillID     *int64    `json:"skill_id"`
	SessionName string    `json:"session_name"`
	Description *string   `json:"description"`
	Mode        string    `json:"mode"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// Create handles the send session request call.
// POST /requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var body CreateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if body.ReceiverID == 0 || body.SessionName == "" || body.Mode == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.negotiator.SendRequest(r.Context(), callerID, service.SendRequestInput{
		ReceiverID:  body.ReceiverID,
		SkillID:     body.SkillID,
		SessionName: body.SessionName,
		Description: body.Description,
		Mode:        body.Mode,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, result)
}

// Accept handles the accept call, receiver only.
// POST /requests/{requestID}/accept
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	callerID, requestID, ok := h.callerAndRequestID(w, r)
	if !ok {
		return
	}

	result, err := h.negotiator.AcceptRequest(r.Context(), callerID, requestID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, result)
}

// Decline handles the decline call, receiver only.
// POST /requests/{requestID}/decline
func (h *RequestHandler) Decline(w http.ResponseWriter, r *http.Request) {
	callerID, requestID, ok := h.callerAndRequestID(w, r)
	if !ok {
		return
	}

	if err := h.negotiator.DeclineRequest(r.Context(), callerID, requestID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{})
}

// Cancel handles the cancel call, sender only.
// POST /requests/{requestID}/cancel
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, requestID, ok := h.callerAndRequestID(w, r)
	if !ok {
		return
	}

	result, err := h.negotiator.CancelRequest(r.Context(), callerID, requestID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, result)
}

func (h *RequestHandler) callerAndRequestID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return 0, 0, false
	}
	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return 0, 0, false
	}
	return callerID, requestID, true
}
