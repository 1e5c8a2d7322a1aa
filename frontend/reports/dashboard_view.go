package reports

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"stocksence/frontend/shared/html"
	"stocksence/infrastructure/security"
	"stocksence/store"
)

type DashboardData struct {
	Username  string
	CompanyID string
	Language  string
	Theme     string
	Summary   store.SalesSummary
	Format    func(float64) string
}

var dashboardLabels = map[string]map[string]string{
	"en": {
		"title":     "Dashboard",
		"revenue":   "Total revenue",
		"sales":     "Sales",
		"units":     "Units sold",
		"products":  "Products",
		"inventory": "Inventory value",
		"trash":     "In trash",
		"top":       "Sales by product",
		"low":       "Low stock",
		"none":      "Nothing to show",
		"company":   "Company",
	},
	"ar": {
		"title":     "لوحة التحكم",
		"revenue":   "إجمالي الإيرادات",
		"sales":     "المبيعات",
		"units":     "الوحدات المباعة",
		"products":  "المنتجات",
		"inventory": "قيمة المخزون",
		"trash":     "في سلة المحذوفات",
		"top":       "المبيعات حسب المنتج",
		"low":       "مخزون منخفض",
		"none":      "لا يوجد شيء لعرضه",
		"company":   "الشركة",
	},
}

func label(lang, key string) string {
	if l, ok := dashboardLabels[lang]; ok {
		return l[key]
	}
	return dashboardLabels["en"][key]
}

func DashboardPage(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if d.Format == nil {
			d.Format = func(v float64) string { return fmt.Sprintf("%.2f", v) }
		}
		esc := security.SanitizeInput
		s := d.Summary
		var b strings.Builder

		fmt.Fprintf(&b, `<header><h1>%s</h1><p>%s · %s %s</p></header>`,
			esc(label(d.Language, "title")), esc(d.Username), esc(label(d.Language, "company")), esc(d.CompanyID))

		b.WriteString(`<section class="cards">`)
		card := func(key, value string) {
			fmt.Fprintf(&b, `<div class="card"><span>%s</span><strong>%s</strong></div>`, esc(label(d.Language, key)), esc(value))
		}
		card("revenue", d.Format(s.TotalRevenue))
		card("sales", fmt.Sprint(s.SaleCount))
		card("units", fmt.Sprint(s.UnitsSold))
		card("products", fmt.Sprint(s.ProductCount))
		card("inventory", d.Format(s.InventoryValue))
		card("trash", fmt.Sprint(s.TrashCount))
		b.WriteString(`</section>`)

		fmt.Fprintf(&b, `<section><h2>%s</h2>`, esc(label(d.Language, "top")))
		if len(s.ByProduct) == 0 {
			fmt.Fprintf(&b, `<p>%s</p>`, esc(label(d.Language, "none")))
		} else {
			b.WriteString(`<table><tbody>`)
			for _, p := range s.ByProduct {
				fmt.Fprintf(&b, `<tr><td>%s</td><td>%d</td><td>%s</td></tr>`, esc(p.ProductName), p.Units, esc(d.Format(p.Revenue)))
			}
			b.WriteString(`</tbody></table>`)
		}
		b.WriteString(`</section>`)

		fmt.Fprintf(&b, `<section><h2>%s</h2>`, esc(label(d.Language, "low")))
		if len(s.LowStock) == 0 {
			fmt.Fprintf(&b, `<p>%s</p>`, esc(label(d.Language, "none")))
		} else {
			b.WriteString(`<ul class="low-stock">`)
			for _, p := range s.LowStock {
				fmt.Fprintf(&b, `<li>%s <b>%d</b></li>`, esc(p.Name), p.Quantity)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</section>`)

		page := html.Layout(html.LayoutData{Title: label(d.Language, "title"), Lang: d.Language, Theme: d.Theme}, b.String())
		_, err := io.WriteString(w, page)
		return err
	})
}
