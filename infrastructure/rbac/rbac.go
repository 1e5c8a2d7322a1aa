// Package rbac maps roles to the API routes they may call.
package rbac

import (
	"sort"
	"strings"
	"sync"

	"stocksence/models"
)

const (
	RoleAdmin    = models.RoleAdmin
	RoleEmployee = models.RoleEmployee
)

// Resource is one route a role may call.
type Resource struct {
	Code   string
	Method string
	Path   string
	Role   string
}

// Rbac holds the route resources granted to each role. Admins are granted
// every registered route.
type Rbac struct {
	mu        sync.RWMutex
	resources map[string][]Resource
	codes     map[string]struct{}
}

func New() *Rbac {
	return &Rbac{
		resources: make(map[string][]Resource),
		codes:     make(map[string]struct{}),
	}
}

// Add grants code (method + path pattern) to role.
func (r *Rbac) Add(role, code, method, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[role] = append(r.resources[role], Resource{
		Code:   code,
		Method: strings.ToUpper(method),
		Path:   path,
		Role:   role,
	})
	r.codes[code] = struct{}{}
}

// Allowed reports whether role may call method on urlPath.
func (r *Rbac) Allowed(role, urlPath, method string) bool {
	if role == RoleAdmin {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ValidateResourceAccess(r.resources[role], urlPath, method)
}

// Permissions returns the route codes granted to role, sorted.
func (r *Rbac) Permissions(role string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	if role == RoleAdmin {
		seen = r.codes
	} else {
		for _, res := range r.resources[role] {
			seen[res.Code] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func ValidateResourceAccess(resources []Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method != method {
			continue
		}
		if matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	pattern = strings.Trim(pattern, "/")
	path = strings.Trim(path, "/")

	patternSeg := strings.Split(pattern, "/")
	pathSeg := strings.Split(path, "/")

	// Segment wildcards: /a/*/c.
	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] == "*" {
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	// Trailing wildcard matches any deeper suffix.
	if len(patternSeg) > 0 && patternSeg[len(patternSeg)-1] == "*" {
		prefix := "/" + strings.Join(patternSeg[:len(patternSeg)-1], "/")
		return strings.HasPrefix("/"+path, prefix+"/") || "/"+path == prefix
	}

	return false
}
