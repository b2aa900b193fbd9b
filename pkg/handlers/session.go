package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "user_session"
	sessionCookieTTL  = 365 * 24 * time.Hour
)

type sessionKey struct{}

// SessionMiddleware makes sure every request carries a session id, issuing a new
// "user_session" cookie when the browser has none or sends a malformed one.
func SessionMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("method", "SessionMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""

			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if _, err = uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					Expires:  time.Now().Add(sessionCookieTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug("session cookie not found, new one created", "session", sessionID)
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionID returns the id set by SessionMiddleware, or "" outside of it.
func SessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionKey{}).(string)
	return sessionID
}
