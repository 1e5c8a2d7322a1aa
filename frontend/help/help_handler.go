package help

import (
	"net/http"

	sessioncontext "stocksence/frontend/shared/context"
	"stocksence/infrastructure/rbac"
	"stocksence/store"
)

// HelpPageQueryHandler lists what the signed-in role may do.
func HelpPageQueryHandler(st *store.Store, rb *rbac.Rbac) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		settings := st.Settings()
		data := PageData{
			Username: session.Username,
			IsAdmin:  session.Role == rbac.RoleAdmin,
			Language: settings.Language,
			Theme:    settings.Theme,
			Topics:   topicsFor(rb.Permissions(session.Role)),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}
