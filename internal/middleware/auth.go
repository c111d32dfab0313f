package middleware

import (
	"net/http"

	"github.com/paragonmech/leadbook/internal/auth"
	"github.com/paragonmech/leadbook/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "leadbook_session"

// RequireAuth resolves the session cookie and populates the request context
// with a SessionContext. Requests without a valid session get 401; lead and
// follow-up handlers trust that this gate already ran.
func RequireAuth(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sc := auth.SessionContext{
				SessionID: sess.ID,
				AccountID: sess.AccountID,
				Name:      sess.Name,
				Email:     sess.Email,
				Picture:   sess.Picture,
				Provider:  sess.Provider,
			}

			ctx := auth.WithSession(r.Context(), sc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
