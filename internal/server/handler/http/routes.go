package http

import (
	"net/http"

	"github.com/atinyakov/TripSync/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps a sync request body.
const maxBodyBytes = 1 << 20

// NewRouter constructs and returns an HTTP handler that serves the trip
// collection API.
//
// Routes:
//
//	POST   /api/sync             → syncHandler.Sync
//	GET    /api/sync/{userId}    → syncHandler.ListByUser
//	DELETE /api/sync/delete/{id} → syncHandler.Delete
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. WithRequestLogging(logger)
//  3. AllowContentType("application/json") and a body size limit
//  4. authMW on /api, when not nil
func NewRouter(
	syncHandler *SyncHandler,
	logger *zap.Logger,
	authMW func(http.Handler) http.Handler,
) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Only allow request bodies with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.RequestSize(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		if authMW != nil {
			r.Use(authMW)
		}
		r.Post("/sync", syncHandler.Sync)
		r.Get("/sync/{userId}", syncHandler.ListByUser)
		r.Delete("/sync/delete/{id}", syncHandler.Delete)
	})

	return r
}
