package stock

import (
	"io"
	"net/http"
	"strings"

	"stocksence/frontend/shared/respond"
	"stocksence/validation"
)

const maxImportBytes = 10 << 20

// StockImportCommandHandler accepts a CSV either as the multipart field
// "file" or as a text/csv request body.
func StockImportCommandHandler(st Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reader io.Reader
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxImportBytes); err != nil {
				respond.Error(w, r, &validation.Error{Messages: []string{"invalid upload"}})
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				respond.Error(w, r, &validation.Error{Messages: []string{"file is required"}})
				return
			}
			defer file.Close()
			reader = file
		} else {
			reader = http.MaxBytesReader(w, r.Body, maxImportBytes)
		}

		summary, err := ImportCSV(r.Context(), st, reader)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, summary)
	}
}
