package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
)

type EmptyTrashResponse struct {
	Removed int `json:"removed"`
}

func ListTrashHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trash, err := st.DeletedSales(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, trash)
	}
}

func RestoreSaleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sale, err := st.RestoreSale(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, sale)
	}
}

func PurgeSaleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.PermanentlyDeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func EmptyTrashHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := st.EmptyTrash(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, EmptyTrashResponse{Removed: n})
	}
}
