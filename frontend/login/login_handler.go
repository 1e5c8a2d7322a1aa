package login

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	sessioncontext "stocksence/frontend/shared/context"
	"stocksence/frontend/shared/respond"
	"stocksence/infrastructure/logger"
	sessioncookie "stocksence/infrastructure/session"
	"stocksence/models"
	"stocksence/store"
)

// RegisterHandler creates a new company with the caller as its admin and signs them in.
func RegisterHandler(st *store.Store, signer *sessioncookie.Signer, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := st.Register(r.Context(), req.Username, req.Password, req.Email)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		issue(w, r, st, signer, secure, user, http.StatusCreated)
	}
}

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(st *store.Store, signer *sessioncookie.Signer, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := st.Login(r.Context(), req.Username, req.Password, req.CompanyID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		issue(w, r, st, signer, secure, user, http.StatusOK)
	}
}

// GoogleLoginHandler exchanges a Google ID token for a session.
func GoogleLoginHandler(st *store.Store, signer *sessioncookie.Signer, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GoogleLoginRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := st.LoginWithGoogle(r.Context(), req.Credential)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		issue(w, r, st, signer, secure, user, http.StatusOK)
	}
}

// LogoutHandler ends the store session and clears the cookie. It only acts
// for a request whose session cookie was verified upstream.
func LogoutHandler(st *store.Store, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessioncontext.GetSessionFromContext(r.Context()); !ok {
			http.SetCookie(w, sessioncookie.ClearCookie(secure))
			respond.Error(w, r, store.ErrNotAuthenticated)
			return
		}
		if err := st.Logout(r.Context()); err != nil && !errors.Is(err, store.ErrNotAuthenticated) {
			respond.Error(w, r, err)
			return
		}
		http.SetCookie(w, sessioncookie.ClearCookie(secure))
		w.WriteHeader(http.StatusNoContent)
	}
}

// RefreshSessionHandler slides the session expiry and re-signs the cookie.
func RefreshSessionHandler(st *store.Store, signer *sessioncookie.Signer, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := st.RefreshSession(r.Context()); err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := st.CurrentUser(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		issue(w, r, st, signer, secure, user, http.StatusOK)
	}
}

func MeHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := st.CurrentSession(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := st.CurrentUser(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, NewUserView(user, sess.ExpiresAt))
	}
}

func issue(w http.ResponseWriter, r *http.Request, st *store.Store, signer *sessioncookie.Signer, secure bool, user models.User, status int) {
	sess, err := st.CurrentSession(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	signed, err := signer.Sign(sess.Token, sess.ExpiresAt)
	if err != nil {
		logger.FromContext(r.Context()).Error("sign session cookie failed", zap.String("user_id", user.ID), zap.Error(err))
		respond.Error(w, r, err)
		return
	}
	http.SetCookie(w, sessioncookie.SessionCookie(signed, signer.MaxAge(sess.ExpiresAt), secure))
	respond.JSON(w, status, NewUserView(user, sess.ExpiresAt))
}
