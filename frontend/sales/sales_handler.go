package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
	"stocksence/validation"
)

type DeleteSaleRequest struct {
	Reason string `json:"reason"`
}

func ListSalesHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sales, err := st.Sales(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, sales)
	}
}

// CreateSaleHandler records a sale; the stock decrement happens in the same store operation.
func CreateSaleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validation.NewSaleInput
		if err := respond.Decode(r, &in); err != nil {
			respond.Error(w, r, err)
			return
		}
		sale, err := st.AddSale(r.Context(), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, sale)
	}
}

// DeleteSaleHandler moves a sale to the trash. The body is optional.
func DeleteSaleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteSaleRequest
		if r.ContentLength > 0 {
			if err := respond.Decode(r, &req); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		if err := st.DeleteSale(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func VerifySaleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sale, err := st.VerifySale(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, sale)
	}
}
