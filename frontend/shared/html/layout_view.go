package html

import (
	"fmt"

	"stocksence/infrastructure/security"
)

// LayoutData controls the document shell.
type LayoutData struct {
	Title string
	Lang  string
	Theme string
}

func RenderLayout(title, body string) string {
	return Layout(LayoutData{Title: title, Lang: "en", Theme: "light"}, body)
}

// Layout wraps body in the document shell. Arabic pages render right to left.
func Layout(d LayoutData, body string) string {
	dir := "ltr"
	if d.Lang == "ar" {
		dir = "rtl"
	}
	return fmt.Sprintf("<!doctype html><html lang=\"%s\" dir=\"%s\"><head><meta charset=\"utf-8\"><title>%s</title><link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body class=\"theme-%s\">%s</body></html>",
		security.SanitizeInput(d.Lang), dir, security.SanitizeInput(d.Title), security.SanitizeInput(d.Theme), body)
}
