// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"

	"skillswap-ledger/internal/api/handler"
	"skillswap-ledger/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router. rdb may be nil, in which
// case the idempotency layer is not installed.
func NewRouter(
	walletHandler *handler.WalletHandler,
	requestHandler *handler.RequestHandler,
	sessionHandler *handler.SessionHandler,
	jwtSecret string,
	rdb *redis.Client,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public bootstrap
	r.Post("/signup", walletHandler.SignUp)

	// Everything else requires a caller identity
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(jwtSecret))
		if rdb != nil {
			r.Use(middleware.Idempotency(rdb, logger))
		}

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestHandler.Create)
			r.Post("/{requestID}/accept", requestHandler.Accept)
			r.Post("/{requestID}/decline", requestHandler.Decline)
			r.Post("/{requestID}/cancel", requestHandler.Cancel)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Post("/{sessionID}/cancel", sessionHandler.Cancel)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.GetBalance)
			r.Get("/transactions", walletHandler.GetTransactionHistory)
		})

		r.Post("/connections", walletHandler.Connect)
		r.Post("/skills", walletHandler.AddSkill)
	})

	return r
}
