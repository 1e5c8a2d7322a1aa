package help

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"stocksence/frontend/shared/html"
	"stocksence/infrastructure/security"
)

type Topic struct {
	Code    string
	Summary string
}

type PageData struct {
	Username string
	IsAdmin  bool
	Language string
	Theme    string
	Topics   []Topic
}

var topicSummaries = map[string]string{
	"PRODUCTS_LIST":         "Browse the product catalog of your company.",
	"PRODUCTS_CREATE":       "Add a product. A serial number is generated for it.",
	"PRODUCTS_EDIT":         "Change a product's name, description, stock, price or category.",
	"PRODUCTS_DELETE":       "Remove a product permanently.",
	"PRODUCTS_LABEL":        "Print a barcode label for a product.",
	"PRODUCTS_IMPORT":       "Upload a CSV (name,description,quantity,price,category) to add or update products.",
	"SALES_LIST":            "Review recorded sales.",
	"SALES_CREATE":          "Record a sale. Stock is reduced in the same step.",
	"SALES_DELETE":          "Move a sale to the trash.",
	"SALES_VERIFY":          "Mark a sale as verified.",
	"TRASH_LIST":            "See sales in the trash. They are purged after 30 days.",
	"TRASH_RESTORE":         "Bring a sale back from the trash.",
	"TRASH_PURGE":           "Delete one trashed sale for good.",
	"TRASH_EMPTY":           "Delete every trashed sale for good.",
	"REPORTS_SUMMARY":       "Totals for revenue, units and inventory value.",
	"REPORTS_SALES_CSV":     "Download sales as CSV.",
	"SETTINGS_VIEW":         "See theme, language and currency.",
	"SETTINGS_EDIT":         "Change theme, language and currency.",
	"CURRENCIES_VIEW":       "List supported currencies.",
	"SESSION_VIEW":          "Show the signed-in account.",
	"SESSION_REFRESH":       "Extend the current session.",
	"SESSION_LOGOUT":        "Sign out.",
	"NOTIFICATIONS_LIST":    "Read your pending messages.",
	"NOTIFICATIONS_DISMISS": "Dismiss a message.",
	"USERS_LIST":            "List the accounts of your company.",
	"USERS_LOCK":            "Lock an account.",
	"USERS_UNLOCK":          "Unlock an account.",
	"SERIALS_LIST":          "List activation serial numbers.",
	"SERIALS_CREATE":        "Add an activation serial number.",
	"SERIALS_DELETE":        "Remove an unused serial number.",
	"AUDIT_LIST":            "Read the audit trail.",
	"BACKUP_EXPORT":         "Download an encrypted backup of your company.",
	"BACKUP_IMPORT":         "Restore your company from a backup.",
	"HELP_VIEW":             "This page.",
}

func topicsFor(codes []string) []Topic {
	out := make([]Topic, 0, len(codes))
	for _, code := range codes {
		summary, ok := topicSummaries[code]
		if !ok {
			continue
		}
		out = append(out, Topic{Code: code, Summary: summary})
	}
	return out
}

func HelpPage(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		esc := security.SanitizeInput
		var b strings.Builder
		role := "Employee"
		if d.IsAdmin {
			role = "Administrator"
		}
		fmt.Fprintf(&b, `<header><h1>Help</h1><p>%s · %s</p></header><ul class="help">`, esc(d.Username), role)
		for _, t := range d.Topics {
			fmt.Fprintf(&b, `<li><code>%s</code> %s</li>`, esc(t.Code), esc(t.Summary))
		}
		b.WriteString(`</ul>`)
		page := html.Layout(html.LayoutData{Title: "Help", Lang: d.Language, Theme: d.Theme}, b.String())
		_, err := io.WriteString(w, page)
		return err
	})
}
