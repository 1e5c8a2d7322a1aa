package settings

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
	"stocksence/validation"
)

const maxBackupBytes = 32 << 20

// BackupExportHandler downloads the encrypted company backup.
func BackupExportHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := st.ExportBackup(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		name := fmt.Sprintf("stocksence-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = w.Write(raw)
	}
}

// BackupImportHandler replaces the company data with the uploaded backup body.
func BackupImportHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
		if err != nil {
			respond.Error(w, r, &validation.Error{Messages: []string{"backup file is too large"}})
			return
		}
		if err := st.ImportBackup(r.Context(), raw); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
