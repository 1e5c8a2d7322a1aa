package reports

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	sessioncontext "stocksence/frontend/shared/context"
	"stocksence/frontend/shared/respond"
	"stocksence/infrastructure/logger"
	"stocksence/store"
)

// SalesCSVHandler exports the company's active sales.
func SalesCSVHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sales, err := st.Sales(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		name := fmt.Sprintf("sales-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		if err := writeSalesCSV(w, sales); err != nil {
			logger.FromContext(r.Context()).Error("write sales csv failed", zap.Error(err))
		}
	}
}

func SummaryQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := st.SalesSummary(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, sum)
	}
}

// DashboardPageHandler renders the HTML overview of the signed-in company.
func DashboardPageHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sum, err := st.SalesSummary(r.Context())
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		settings := st.Settings()
		data := DashboardData{
			Username:  session.Username,
			CompanyID: session.CompanyID,
			Language:  settings.Language,
			Theme:     settings.Theme,
			Summary:   sum,
			Format:    func(v float64) string { return st.FormatPrice(v, "") },
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := DashboardPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
			return
		}
	}
}
