// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"skillswap-ledger/internal/api/middleware"
	"skillswap-ledger/internal/api/types"
	"skillswap-ledger/internal/service"
	"skillswap-ledger/internal/util"
)

// WalletHandler handles HTTP requests for wallet reads, the signup bootstrap
// and the supporting connection/skill records.
type WalletHandler struct {
	ledger    service.LedgerService
	logger    *slog.Logger
	jwtSecret string
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger service.LedgerService, logger *slog.Logger, jwtSecret string) *WalletHandler {
	return &WalletHandler{ledger: ledger, logger: logger, jwtSecret: jwtSecret}
}

// SignUpBody represents the request body for signup.
type SignUpBody struct {
	Username string `json:"username"`
}

// SignUp bootstraps a user with a granted wallet and returns a token for the
// authenticated endpoints.
// POST /signup
func (h *WalletHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body SignUpBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	user, wallet, err := h.ledger.SignUp(r.Context(), body.Username)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"user_id":   user.ID,
		"wallet_id": wallet.ID,
		"balance":   wallet.AvailableBalance,
		"token":     token,
	})
}

// GetBalance returns the caller's wallet buckets.
// GET /wallet
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	wallet, err := h.ledger.GetBalance(r.Context(), callerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wallet_id":         wallet.ID,
		"available_balance": wallet.AvailableBalance,
		"outgoing_balance":  wallet.OutgoingBalance,
		"incoming_balance":  wallet.IncomingBalance,
	})
}

// GetTransactionHistory returns a page of the caller's ledger history.
// GET /wallet/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, totalCount, err := h.ledger.GetTransactionHistory(r.Context(), callerID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.NewPage(transactions, limit, offset, totalCount))
}

// ConnectBody represents the request body for creating a connection.
type ConnectBody struct {
	UserID int64 `json:"user_id"`
}

// Connect creates an ACTIVE connection between the caller and another user.
// POST /connections
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var body ConnectBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	connection, err := h.ledger.Connect(r.Context(), callerID, body.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, connection)
}

// AddSkillBody represents the request body for registering a skill.
type AddSkillBody struct {
	Name string `json:"name"`
}

// AddSkill registers a skill owned by the caller.
// POST /skills
func (h *WalletHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var body AddSkillBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	skill, err := h.ledger.AddSkill(r.Context(), callerID, body.Name)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, skill)
}
