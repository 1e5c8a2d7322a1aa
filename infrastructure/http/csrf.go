package http

import (
	"net/http"
	"strings"

	"stocksence/frontend/shared/respond"
	"stocksence/infrastructure/security"
)

const (
	csrfCookieName = "X-CSRF-Token"
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware issues a double-submit token cookie and requires unsafe
// requests to echo it in the X-CSRF-Token header or the _csrf form field.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.ensureCSRFToken(w, r)
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		provided := strings.TrimSpace(r.Header.Get(csrfHeaderName))
		if provided == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			provided = strings.TrimSpace(r.FormValue("_csrf"))
		}

		if provided == "" || !security.ConstantTimeEqual(token, provided) {
			respond.JSON(w, http.StatusForbidden, respond.ErrorBody{Error: "invalid csrf token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func (s *Server) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := security.GenerateSecureToken()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}
