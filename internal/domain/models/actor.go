package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles supplied by the identity collaborator.
const (
	RoleUser   = "user"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// Actor is the caller of an engine operation: who they are and what role the
// identity collaborator vouched for.
type Actor struct {
	UserID primitive.ObjectID
	Role   string
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool { return !a.UserID.IsZero() }

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && strings.EqualFold(a.Role, RoleAdmin)
}

// ValidRole reports whether role is one of user, expert or admin.
func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleUser, RoleExpert, RoleAdmin:
		return true
	}
	return false
}
