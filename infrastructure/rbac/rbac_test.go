package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/api/products/*", path: "/api/products/p-1", ok: true},
		{pattern: "/api/products/*/label.pdf", path: "/api/products/p-1/label.pdf", ok: true},
		{pattern: "/api/trash/*/restore", path: "/api/trash/s-1/restore", ok: true},
		{pattern: "/api/users/*", path: "/api/users/u-1/lock", ok: true},
		{pattern: "/api/sales", path: "/api/sales", ok: true},
		{pattern: "/api/sales", path: "/api/sales/s-1", ok: false},
		{pattern: "/api/trash/*/restore", path: "/api/trash/s-1/purge", ok: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, matchPath(tc.pattern, tc.path), "pattern=%s path=%s", tc.pattern, tc.path)
	}
}

func TestAllowed(t *testing.T) {
	r := New()
	r.Add(RoleEmployee, "SALES_LIST", http.MethodGet, "/api/sales")
	r.Add(RoleEmployee, "SALES_CREATE", "post", "/api/sales")
	r.Add(RoleAdmin, "SERIALS_LIST", http.MethodGet, "/api/serials")

	assert.True(t, r.Allowed(RoleEmployee, "/api/sales", http.MethodPost))
	assert.False(t, r.Allowed(RoleEmployee, "/api/serials", http.MethodGet))
	assert.True(t, r.Allowed(RoleAdmin, "/api/serials", http.MethodGet))
	assert.True(t, r.Allowed(RoleAdmin, "/api/anything", http.MethodDelete))
	assert.False(t, r.Allowed("", "/api/sales", http.MethodGet))

	assert.Equal(t, []string{"SALES_CREATE", "SALES_LIST"}, r.Permissions(RoleEmployee))
	assert.Equal(t, []string{"SALES_CREATE", "SALES_LIST", "SERIALS_LIST"}, r.Permissions(RoleAdmin))
}
