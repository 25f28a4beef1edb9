// Package api wires the HTTP surface: routing, middleware ordering,
// and the translation of domain errors into problem responses.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidecal/server/internal/api/handlers"
	"github.com/tidecal/server/internal/api/middleware"
	"github.com/tidecal/server/internal/auth"
	"github.com/tidecal/server/internal/config"
	"github.com/tidecal/server/internal/domain/events"
	"github.com/tidecal/server/internal/domain/users"
	"github.com/tidecal/server/internal/metrics"
)

// Deps carries the constructed services the router mounts. Health may
// be nil, in which case no /health route is registered.
type Deps struct {
	Auth   *auth.Service
	Events *events.Service
	Users  *users.Service
	Health http.Handler
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) http.Handler {
	secureCookies := cfg.Environment == "production"

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Users, cfg.Environment, secureCookies)
	eventsHandler := handlers.NewEventsHandler(deps.Events, cfg.Environment)
	profileHandler := handlers.NewProfileHandler(deps.Users, cfg.Environment)

	rateLimit := middleware.RateLimit(cfg.RateLimit)
	loginTier := middleware.WithRateLimitTier(middleware.TierLogin)
	requireSession := middleware.RequireSession(deps.Auth, cfg.Environment)

	session := func(h http.HandlerFunc) http.Handler {
		return rateLimit(requireSession(h))
	}

	mux := http.NewServeMux()

	if deps.Health != nil {
		mux.Handle("/health", deps.Health)
	}
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/api/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(rateLimit(http.HandlerFunc(authHandler.Login))),
	}))
	mux.Handle("/api/logout", methodMux(map[string]http.Handler{
		http.MethodPost: rateLimit(http.HandlerFunc(authHandler.Logout)),
	}))

	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  session(eventsHandler.List),
		http.MethodPost: session(eventsHandler.Create),
	}))
	mux.Handle("/api/events/month", methodMux(map[string]http.Handler{
		http.MethodGet: session(eventsHandler.Month),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    session(eventsHandler.Get),
		http.MethodPut:    session(eventsHandler.Update),
		http.MethodDelete: session(eventsHandler.Delete),
	}))

	mux.Handle("/api/profile-picture", methodMux(map[string]http.Handler{
		http.MethodGet:  session(profileHandler.GetPicture),
		http.MethodPost: session(profileHandler.SetPicture),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
