package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutDirection(t *testing.T) {
	assert.Contains(t, Layout(LayoutData{Title: "x", Lang: "ar", Theme: "dark"}, ""), `dir="rtl"`)
	assert.Contains(t, RenderLayout("x", "<p>hi</p>"), `dir="ltr"`)
	assert.Contains(t, RenderLayout("<script>", ""), "&lt;script&gt;")
}

func TestJSONFormScript(t *testing.T) {
	s := JSONFormScript("login", "/dashboard")
	assert.Contains(t, s, `getElementById("login")`)
	assert.Contains(t, s, `window.location = "/dashboard"`)
	assert.Contains(t, s, "X-CSRF-Token")
}
