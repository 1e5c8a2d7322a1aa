package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminusers "stocksence/frontend/adminUsers"
	"stocksence/frontend/help"
	"stocksence/frontend/login"
	"stocksence/frontend/notifications"
	"stocksence/frontend/products"
	"stocksence/frontend/reports"
	"stocksence/frontend/sales"
	"stocksence/frontend/settings"
	"stocksence/frontend/stock"
	"stocksence/infrastructure/rbac"
)

// RegisterLoginRoutes registers the routes that work without a session.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/api/register", login.RegisterHandler(s.Store, s.Signer, s.SecureCookies))
	s.router.Post("/api/login", login.CreateLoginHandler(s.Store, s.Signer, s.SecureCookies))
	s.router.Post("/api/login/google", login.GoogleLoginHandler(s.Store, s.Signer, s.SecureCookies))
}

// RegisterPageRoutes registers the HTML pages.
func (s *Server) RegisterPageRoutes(r chi.Router) {
	r.Get("/dashboard", reports.DashboardPageHandler(s.Store))
	s.grant("HELP_VIEW", http.MethodGet, "/help")
	r.Get("/help", help.HelpPageQueryHandler(s.Store, s.Rbac))
}

// RegisterAdminRoutes registers admin-only routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.RoleAdmin, "USERS_LIST", http.MethodGet, "/api/users")
	r.Get("/users", adminusers.UsersQueryHandler(s.Store))
	s.Rbac.Add(rbac.RoleAdmin, "USERS_LOCK", http.MethodPost, "/api/users/*/lock")
	r.Post("/users/{id}/lock", adminusers.LockUserCommandHandler(s.Store))
	s.Rbac.Add(rbac.RoleAdmin, "USERS_UNLOCK", http.MethodPost, "/api/users/*/unlock")
	r.Post("/users/{id}/unlock", adminusers.UnlockUserCommandHandler(s.Store))

	s.Rbac.Add(rbac.RoleAdmin, "SERIALS_LIST", http.MethodGet, "/api/serials")
	r.Get("/serials", adminusers.SerialsQueryHandler(s.Store))
	s.Rbac.Add(rbac.RoleAdmin, "SERIALS_CREATE", http.MethodPost, "/api/serials")
	r.Post("/serials", adminusers.AddSerialCommandHandler(s.Store))
	s.Rbac.Add(rbac.RoleAdmin, "SERIALS_DELETE", http.MethodDelete, "/api/serials/*")
	r.Delete("/serials/{id}", adminusers.RemoveSerialCommandHandler(s.Store))

	s.Rbac.Add(rbac.RoleAdmin, "AUDIT_LIST", http.MethodGet, "/api/audit")
	r.Get("/audit", adminusers.AuditQueryHandler(s.Store))

	s.Rbac.Add(rbac.RoleAdmin, "BACKUP_EXPORT", http.MethodGet, "/api/backup")
	r.Get("/backup", settings.BackupExportHandler(s.Store))
	s.Rbac.Add(rbac.RoleAdmin, "BACKUP_IMPORT", http.MethodPost, "/api/backup")
	r.Post("/backup", settings.BackupImportHandler(s.Store))
	return r
}

// RegisterFrontendRoutes registers routes open to every signed-in role.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterSessionRoutes(r)
	s.RegisterProductRoutes(r)
	s.RegisterSaleRoutes(r)
	s.RegisterReportRoutes(r)

	s.grant("SETTINGS_VIEW", http.MethodGet, "/api/settings")
	r.Get("/settings", settings.SettingsQueryHandler(s.Store))
	s.grant("SETTINGS_EDIT", http.MethodPut, "/api/settings")
	r.Put("/settings", settings.SettingsUpdateHandler(s.Store))
	s.grant("CURRENCIES_VIEW", http.MethodGet, "/api/currencies")
	r.Get("/currencies", settings.CurrenciesQueryHandler(s.Store))

	s.grant("NOTIFICATIONS_LIST", http.MethodGet, "/api/notifications")
	r.Get("/notifications", notifications.NotificationsQueryHandler(s.Store))
	s.grant("NOTIFICATIONS_DISMISS", http.MethodDelete, "/api/notifications/*")
	r.Delete("/notifications/{id}", notifications.DismissNotificationHandler(s.Store))
	return r
}

func (s *Server) RegisterSessionRoutes(r chi.Router) {
	s.grant("SESSION_LOGOUT", http.MethodPost, "/api/logout")
	r.Post("/logout", login.LogoutHandler(s.Store, s.SecureCookies))
	s.grant("SESSION_VIEW", http.MethodGet, "/api/me")
	r.Get("/me", login.MeHandler(s.Store))
	s.grant("SESSION_REFRESH", http.MethodPost, "/api/session/refresh")
	r.Post("/session/refresh", login.RefreshSessionHandler(s.Store, s.Signer, s.SecureCookies))
}

func (s *Server) RegisterProductRoutes(r chi.Router) {
	s.grant("PRODUCTS_LIST", http.MethodGet, "/api/products")
	r.Get("/products", products.ListProductsHandler(s.Store))
	s.grant("PRODUCTS_CREATE", http.MethodPost, "/api/products")
	r.Post("/products", products.CreateProductHandler(s.Store))
	s.grant("PRODUCTS_IMPORT", http.MethodPost, "/api/products/import")
	r.Post("/products/import", stock.StockImportCommandHandler(s.Store))
	s.grant("PRODUCTS_EDIT", http.MethodPut, "/api/products/*")
	r.Put("/products/{id}", products.UpdateProductHandler(s.Store))
	s.grant("PRODUCTS_DELETE", http.MethodDelete, "/api/products/*")
	r.Delete("/products/{id}", products.DeleteProductHandler(s.Store))
	s.grant("PRODUCTS_LABEL", http.MethodGet, "/api/products/*/label.pdf")
	r.Get("/products/{id}/label.pdf", products.ProductLabelQueryHandler(s.Store))
}

func (s *Server) RegisterSaleRoutes(r chi.Router) {
	s.grant("SALES_LIST", http.MethodGet, "/api/sales")
	r.Get("/sales", sales.ListSalesHandler(s.Store))
	s.grant("SALES_CREATE", http.MethodPost, "/api/sales")
	r.Post("/sales", sales.CreateSaleHandler(s.Store))
	s.grant("SALES_DELETE", http.MethodDelete, "/api/sales/*")
	r.Delete("/sales/{id}", sales.DeleteSaleHandler(s.Store))
	s.grant("SALES_VERIFY", http.MethodPost, "/api/sales/*/verify")
	r.Post("/sales/{id}/verify", sales.VerifySaleHandler(s.Store))

	s.grant("TRASH_LIST", http.MethodGet, "/api/trash")
	r.Get("/trash", sales.ListTrashHandler(s.Store))
	s.grant("TRASH_RESTORE", http.MethodPost, "/api/trash/*/restore")
	r.Post("/trash/{id}/restore", sales.RestoreSaleHandler(s.Store))
	s.grant("TRASH_PURGE", http.MethodDelete, "/api/trash/*")
	r.Delete("/trash/{id}", sales.PurgeSaleHandler(s.Store))
	s.grant("TRASH_EMPTY", http.MethodDelete, "/api/trash")
	r.Delete("/trash", sales.EmptyTrashHandler(s.Store))
}

func (s *Server) RegisterReportRoutes(r chi.Router) {
	s.grant("REPORTS_SUMMARY", http.MethodGet, "/api/reports/summary")
	r.Get("/reports/summary", reports.SummaryQueryHandler(s.Store))
	s.grant("REPORTS_SALES_CSV", http.MethodGet, "/api/reports/sales.csv")
	r.Get("/reports/sales.csv", reports.SalesCSVHandler(s.Store))
}

// grant registers a route for employees; admins may call every route.
func (s *Server) grant(code, method, path string) {
	s.Rbac.Add(rbac.RoleEmployee, code, method, path)
	s.Rbac.Add(rbac.RoleAdmin, code, method, path)
}
