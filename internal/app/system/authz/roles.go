// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"
)

// HasAnyRole reports whether the current request's user has any of the given
// roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	cur, ok := Role(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}
