package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidecal/server/internal/api/problem"
	"github.com/tidecal/server/internal/auth"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "tidecal_session"

const usernameKey contextKey = "session_username"

// Validator resolves a session token to the username it belongs to.
type Validator interface {
	Validate(token string) (string, error)
}

// RequireSession rejects requests without a valid session cookie and
// stores the authenticated username in the request context.
func RequireSession(sessions Validator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", problem.ErrUnauthorized, env)
				return
			}

			username, err := sessions.Validate(cookie.Value)
			if err != nil {
				ClearSessionCookie(w)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Invalid or expired session", err, env)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username returns the authenticated username, or "" outside a
// RequireSession-wrapped handler.
func Username(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey).(string); ok {
		return username
	}
	return ""
}

// SetSessionCookie writes the session cookie for a fresh login.
func SetSessionCookie(w http.ResponseWriter, session auth.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the cookie on logout or when validation
// fails.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
