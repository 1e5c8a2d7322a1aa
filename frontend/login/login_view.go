package login

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"stocksence/frontend/shared/html"
	"stocksence/infrastructure/security"
)

// GetLoginScreen renders the sign-in form. The form posts JSON through the
// inline script so the same endpoint serves browsers and API clients.
func GetLoginScreen(errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := `<main class="login"><h1>StockSence</h1>`
		if errorMessage != "" {
			body += `<p class="error">` + security.SanitizeInput(errorMessage) + `</p>`
		}
		body += `<form id="login" method="POST" action="/api/login">
<label>Username <input name="username" autocomplete="username" required></label>
<label>Password <input name="password" type="password" autocomplete="current-password" required></label>
<label>Company ID <input name="companyId" required></label>
<button type="submit">Sign in</button>
</form>` + html.JSONFormScript("login", "/dashboard") + `</main>`
		_, err := io.WriteString(w, html.RenderLayout("Sign in", body))
		return err
	})
}

// GetLoginScreenHandler renders the login screen.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GetLoginScreen(r.URL.Query().Get("error")).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		return
	}
}
