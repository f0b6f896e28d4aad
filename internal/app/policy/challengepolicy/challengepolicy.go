// internal/app/policy/challengepolicy/challengepolicy.go
package challengepolicy

import (
	"github.com/dalemusser/docthrough/internal/domain/models"
)

// CanModerate reports whether the actor may approve or reject proposals.
func CanModerate(actor models.Actor) bool {
	return actor.IsAdmin()
}

// CanEdit reports whether the actor may update the challenge. Only the
// owner edits; admins moderate but do not rewrite proposals.
func CanEdit(actor models.Actor, c models.Challenge) bool {
	return c.IsOwner(actor.UserID)
}

// CanCancel reports whether the actor may cancel the challenge.
func CanCancel(actor models.Actor, c models.Challenge) bool {
	return c.IsOwner(actor.UserID)
}

// CanSoftDelete reports whether the actor may soft-delete the challenge:
// the owner or an admin.
func CanSoftDelete(actor models.Actor, c models.Challenge) bool {
	return actor.IsAdmin() || c.IsOwner(actor.UserID)
}

// CanHardDelete reports whether the actor may remove the challenge for good.
func CanHardDelete(actor models.Actor) bool {
	return actor.IsAdmin()
}

// CanView reports whether the actor may see the challenge. Soft-deleted
// challenges are visible to admins only.
func CanView(actor models.Actor, c models.Challenge) bool {
	if c.Deleted() {
		return actor.IsAdmin()
	}
	return true
}

// CanManageAttend reports whether the actor may edit or delete the attend:
// its author or an admin.
func CanManageAttend(actor models.Actor, a models.Attend) bool {
	if actor.IsAdmin() {
		return true
	}
	return !actor.UserID.IsZero() && a.AuthorID == actor.UserID
}

// CanViewAttend reports whether the actor may read the attend. Deleted
// attends are visible to admins only; drafts to their author and admins.
func CanViewAttend(actor models.Actor, a models.Attend) bool {
	switch {
	case a.IsDeleted:
		return actor.IsAdmin()
	case a.IsDraft:
		return CanManageAttend(actor, a)
	}
	return true
}
