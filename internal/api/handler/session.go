// internal/api/handler/session.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skillswap-ledger/internal/api/middleware"
	"skillswap-ledger/internal/service"
	"skillswap-ledger/internal/util"
)

// SessionHandler handles HTTP requests for the session lifecycle manager.
type SessionHandler struct {
	lifecycle service.LifecycleService
	logger    *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(lifecycle service.LifecycleService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{lifecycle: lifecycle, logger: logger}
}

// CancelSessionBody represents the request body for a cancellation request.
type CancelSessionBody struct {
	Reason *string `json:"reason"`
}

// Cancel handles one party's cancellation request.
// POST /sessions/{sessionID}/cancel
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, sessionID, ok := h.callerAndSessionID(w, r)
	if !ok {
		return
	}

	var body CancelSessionBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
	}

	result, err := h.lifecycle.RequestCancel(r.Context(), callerID, sessionID, body.Reason)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, result)
}

// Get returns a session to one of its participants.
// GET /sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	callerID, sessionID, ok := h.callerAndSessionID(w, r)
	if !ok {
		return
	}

	session, err := h.lifecycle.GetSession(r.Context(), callerID, sessionID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, session)
}

func (h *SessionHandler) callerAndSessionID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return 0, 0, false
	}
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return 0, 0, false
	}
	return callerID, sessionID, true
}
