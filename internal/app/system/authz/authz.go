// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, ObjectID and a found
// flag. A missing user, a malformed id or an unknown role yields
// "visitor", "", NilObjectID, false so ok=true always means a usable identity.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	role = strings.ToLower(strings.TrimSpace(user.Role))
	if !models.ValidRole(role) {
		return "visitor", "", primitive.NilObjectID, false
	}
	return role, user.Name, userID, true
}

// ActorFromRequest builds the engine caller from the session. An anonymous
// request yields the zero Actor, which engines reject as unauthenticated.
func ActorFromRequest(r *http.Request) models.Actor {
	role, _, id, ok := UserCtx(r)
	if !ok {
		return models.Actor{}
	}
	return models.Actor{UserID: id, Role: role}
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}
