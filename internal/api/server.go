package api

import (
	"net/http"
	"time"

	civicsapi "github.com/civix-app/civix-backend/internal/api/civics"
	decisionapi "github.com/civix-app/civix-backend/internal/api/decision"
	jurisdictionapi "github.com/civix-app/civix-backend/internal/api/jurisdiction"
	"github.com/civix-app/civix-backend/internal/api/middleware"
	queryapi "github.com/civix-app/civix-backend/internal/api/query"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	queryHandler *queryapi.Handler,
	decisionHandler *decisionapi.Handler,
	civicsHandler *civicsapi.Handler,
	jurisdictionHandler *jurisdictionapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Register routes
	queryapi.RegisterRoutes(r, queryHandler)
	decisionapi.RegisterRoutes(r, decisionHandler)
	civicsapi.RegisterRoutes(r, civicsHandler)
	jurisdictionapi.RegisterRoutes(r, jurisdictionHandler)

	return r
}
