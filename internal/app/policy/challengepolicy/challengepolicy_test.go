package challengepolicy_test

import (
	"testing"

	"github.com/dalemusser/docthrough/internal/app/policy/challengepolicy"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChallengeRules(t *testing.T) {
	owner := primitive.NewObjectID()
	ownerActor := models.Actor{UserID: owner, Role: models.RoleUser}
	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	stranger := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleExpert}
	anon := models.Actor{}

	live := models.Challenge{OwnerID: owner, Status: models.ChallengeApproved}
	deleted := models.Challenge{OwnerID: owner, Status: models.ChallengeDeleted}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"admin moderates", challengepolicy.CanModerate(admin), true},
		{"owner cannot moderate", challengepolicy.CanModerate(ownerActor), false},
		{"owner edits", challengepolicy.CanEdit(ownerActor, live), true},
		{"admin does not edit", challengepolicy.CanEdit(admin, live), false},
		{"owner cancels", challengepolicy.CanCancel(ownerActor, live), true},
		{"stranger cannot cancel", challengepolicy.CanCancel(stranger, live), false},
		{"anonymous cannot cancel", challengepolicy.CanCancel(anon, models.Challenge{}), false},
		{"owner soft deletes", challengepolicy.CanSoftDelete(ownerActor, live), true},
		{"admin soft deletes", challengepolicy.CanSoftDelete(admin, live), true},
		{"stranger cannot soft delete", challengepolicy.CanSoftDelete(stranger, live), false},
		{"admin hard deletes", challengepolicy.CanHardDelete(admin), true},
		{"owner cannot hard delete", challengepolicy.CanHardDelete(ownerActor), false},
		{"anyone views live", challengepolicy.CanView(stranger, live), true},
		{"owner cannot view deleted", challengepolicy.CanView(ownerActor, deleted), false},
		{"admin views deleted", challengepolicy.CanView(admin, deleted), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestAttendRules(t *testing.T) {
	author := primitive.NewObjectID()
	authorActor := models.Actor{UserID: author, Role: models.RoleUser}
	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	other := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	final := models.Attend{AuthorID: author}
	draft := models.Attend{AuthorID: author, IsDraft: true}
	gone := models.Attend{AuthorID: author, IsDeleted: true}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"author manages", challengepolicy.CanManageAttend(authorActor, final), true},
		{"admin manages", challengepolicy.CanManageAttend(admin, final), true},
		{"other cannot manage", challengepolicy.CanManageAttend(other, final), false},
		{"anonymous cannot manage", challengepolicy.CanManageAttend(models.Actor{}, models.Attend{}), false},
		{"other views final", challengepolicy.CanViewAttend(other, final), true},
		{"other cannot view draft", challengepolicy.CanViewAttend(other, draft), false},
		{"author views draft", challengepolicy.CanViewAttend(authorActor, draft), true},
		{"author cannot view deleted", challengepolicy.CanViewAttend(authorActor, gone), false},
		{"admin views deleted", challengepolicy.CanViewAttend(admin, gone), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}
