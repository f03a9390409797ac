// Package api wires handlers, middleware, and routes into one http.Handler.
package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gatherly/server/internal/api/handlers"
	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/registrations"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
	"github.com/gatherly/server/internal/storage/sqlite"
	"github.com/gatherly/server/internal/uploads"
	"github.com/rs/zerolog"
)

// NewRouter assembles the full HTTP surface over an already-open and
// migrated database.
func NewRouter(cfg config.Config, logger zerolog.Logger, db *sql.DB) (http.Handler, error) {
	repo, err := sqlite.NewRepository(db)
	if err != nil {
		return nil, fmt.Errorf("repository init: %w", err)
	}

	images, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)
	if err != nil {
		return nil, fmt.Errorf("uploads init: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	usersService := users.NewService(repo.Users(), hasher, logger)
	eventsService := events.NewService(repo.Events(), logger)
	registrationsService := registrations.NewService(repo.Registrations(), repo.Events(), logger)

	authHandler := handlers.NewAuthHandler(usersService, tokens, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, images, cfg.Environment)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsService, cfg.Environment)

	requireAuth := middleware.RequireAuth(tokens, repo.Users(), cfg.Environment)
	jsonBody := middleware.RequestSize(middleware.DefaultMaxBodySize)
	uploadBody := middleware.RequestSize(cfg.Uploads.MaxBytes + middleware.DefaultMaxBodySize)

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(db))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/uploads/{file}", http.HandlerFunc(eventsHandler.ServeImage))

	mux.Handle("/api/v1/users/signup", methodMux(map[string]http.Handler{
		http.MethodPost: jsonBody(http.HandlerFunc(authHandler.Signup)),
	}))
	mux.Handle("/api/v1/users/login", methodMux(map[string]http.Handler{
		http.MethodPost: jsonBody(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/users/me", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(authHandler.Me)),
	}))
	mux.Handle("/api/v1/users/logout", methodMux(map[string]http.Handler{
		http.MethodPost: requireAuth(http.HandlerFunc(authHandler.Logout)),
	}))
	mux.Handle("/api/v1/users/me/registrations", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(registrationsHandler.ListMine)),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  requireAuth(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: requireAuth(uploadBody(http.HandlerFunc(eventsHandler.Create))),
	}))
	mux.Handle("/api/v1/events/{eventID}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    requireAuth(uploadBody(http.HandlerFunc(eventsHandler.Update))),
		http.MethodDelete: requireAuth(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("/api/v1/events/{eventID}/register", methodMux(map[string]http.Handler{
		http.MethodPost: requireAuth(http.HandlerFunc(registrationsHandler.Register)),
	}))
	mux.Handle("/api/v1/events/{eventID}/registrations", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(registrationsHandler.ListByEvent)),
	}))
	mux.Handle("/api/v1/registrations/{registrationID}", methodMux(map[string]http.Handler{
		http.MethodDelete: requireAuth(http.HandlerFunc(registrationsHandler.Cancel)),
	}))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler, nil
}

func methodMux(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(routes))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(routes map[string]http.Handler) string {
	methods := make([]string, 0, len(routes))
	for method := range routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
