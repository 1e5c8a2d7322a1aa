package products

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
	"stocksence/validation"
)

func ListProductsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := st.Products(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, products)
	}
}

func CreateProductHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validation.NewProductInput
		if err := respond.Decode(r, &in); err != nil {
			respond.Error(w, r, err)
			return
		}
		p, err := st.AddProduct(r.Context(), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, p)
	}
}

func UpdateProductHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch validation.ProductPatch
		if err := respond.Decode(r, &patch); err != nil {
			respond.Error(w, r, err)
			return
		}
		p, err := st.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}

func DeleteProductHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ProductLabelQueryHandler streams a printable shelf label for one product.
func ProductLabelQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := st.Product(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		pdf, err := renderProductLabelPDF(LabelData{
			Name:         p.Name,
			Category:     p.Category,
			SerialNumber: p.SerialNumber,
			Price:        st.FormatPrice(p.Price, ""),
		}, time.Now())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "label-"+p.SerialNumber+".pdf"))
		_, _ = w.Write(pdf)
	}
}
