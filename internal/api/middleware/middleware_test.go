package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tidecal/server/internal/auth"
	"github.com/tidecal/server/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCorrelationIDGenerated(t *testing.T) {
	var seen string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestCorrelationIDHonorsHeader(t *testing.T) {
	var seen string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	r.Header.Set("X-Request-ID", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, "upstream-id", seen)
}

func TestRequestLoggingPreservesStatus(t *testing.T) {
	handler := RequestLogging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{PerMinute: 3, LoginPerMinute: 0}
	handler := RateLimit(cfg)(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		r.RemoteAddr = "203.0.113.9:1234"
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	r.RemoteAddr = "203.0.113.9:1234"
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitKeysByClient(t *testing.T) {
	cfg := config.RateLimitConfig{PerMinute: 1}
	handler := RateLimit(cfg)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	first.RemoteAddr = "203.0.113.1:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	require.Equal(t, http.StatusOK, w.Code)

	other := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	other.RemoteAddr = "203.0.113.2:1000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitExemptsHealth(t *testing.T) {
	cfg := config.RateLimitConfig{PerMinute: 1}
	handler := RateLimit(cfg)(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/health", nil)
		r.RemoteAddr = "203.0.113.3:1000"
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitLoginTier(t *testing.T) {
	cfg := config.RateLimitConfig{PerMinute: 100, LoginPerMinute: 2}
	handler := WithRateLimitTier(TierLogin)(RateLimit(cfg)(okHandler()))

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = "203.0.113.4:1000"
		handler.ServeHTTP(w, r)
		last = w.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

type fakeValidator struct {
	username string
	err      error
}

func (f fakeValidator) Validate(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.username, nil
}

func TestRequireSessionMissingCookie(t *testing.T) {
	handler := RequireSession(fakeValidator{username: "operator"}, "test")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSessionExpired(t *testing.T) {
	handler := RequireSession(fakeValidator{err: errors.New("session expired")}, "test")(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
}

func TestRequireSessionSetsUsername(t *testing.T) {
	var seen string
	handler := RequireSession(fakeValidator{username: "operator"}, "test")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = Username(r.Context())
		}))

	r := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "token"})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, "operator", seen)
}

func TestSetSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	session := auth.Session{Token: "abc", Username: "operator", ExpiresAt: time.Now().Add(time.Hour)}
	SetSessionCookie(w, session, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "abc", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}
