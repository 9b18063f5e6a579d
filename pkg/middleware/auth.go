package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// SessionName is the cookie name holding the login session
	SessionName = "inkwell_session"

	sessionUserIDKey = "user_id"
)

// CurrentUser resolves the acting identity from the session cookie and, if
// present, attaches it to the request context. Anonymous requests pass
// through untouched.
func CurrentUser(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err == nil {
				if userID, ok := session.Values[sessionUserIDKey].(int64); ok && userID > 0 {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects anonymous requests to the login page. Authorization
// denials elsewhere are also expressed as redirects, never error pages.
func RequireAuth(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r.Context()); !ok {
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignIn records the user ID in the session cookie
func SignIn(w http.ResponseWriter, r *http.Request, store sessions.Store, userID int64) error {
	session, _ := store.Get(r, SessionName)
	session.Values[sessionUserIDKey] = userID
	return session.Save(r, w)
}

// SignOut drops the session cookie
func SignOut(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, _ := store.Get(r, SessionName)
	delete(session.Values, sessionUserIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// WithUserID returns a context carrying the acting user ID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
