package adminusers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
)

// UsersQueryHandler lists the accounts of the admin's company.
func UsersQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := st.Users(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toUserRows(users))
	}
}

func LockUserCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LockUserRequest
		if r.ContentLength > 0 {
			if err := respond.Decode(r, &req); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		if err := st.LockUser(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UnlockUserCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.UnlockUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SerialsQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serials, err := st.SerialNumbers(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, serials)
	}
}

func AddSerialCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddSerialRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		sn, err := st.AddSerialNumber(r.Context(), req.SerialNumber)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, sn)
	}
}

func RemoveSerialCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.RemoveSerialNumber(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AuditQueryHandler returns the company audit trail, newest first.
func AuditQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := st.AuditLogs(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, logs)
	}
}
