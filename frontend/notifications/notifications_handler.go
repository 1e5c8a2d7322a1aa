package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
)

// NotificationsQueryHandler returns the live toast messages.
func NotificationsQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, st.Notifications())
	}
}

func DismissNotificationHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st.DismissNotification(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}
