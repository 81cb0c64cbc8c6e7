// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"skillswap-ledger/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps the service error taxonomy onto HTTP status codes.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "No caller identity"
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Caller is not a party to this record"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrInvalidState):
		statusCode = http.StatusUnprocessableEntity
		message = "Action is not valid for the record's current status"
	case util.IsError(err, util.ErrNoSkillAvailable):
		statusCode = http.StatusUnprocessableEntity
		message = "No skill available to anchor the session"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Conflicting record already exists"
	case util.IsError(err, util.ErrAlreadyRequested):
		statusCode = http.StatusConflict
		message = "Cancellation already requested by caller"
	case util.IsError(err, util.ErrSelfRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNoConnection):
		statusCode = http.StatusBadRequest
		message = "No active connection between the two users"
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}
