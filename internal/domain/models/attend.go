package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attend is a unit of translation work submitted against a challenge.
//
// NOTE:
//   - At most one final (IsDraft=false), non-deleted attend exists per
//     (ChallengeID, AuthorID). A partial unique index enforces it.
//   - Drafts are exempt from that rule and never count toward capacity.
//   - Attends are soft-deleted; their likes and feedback are removed when
//     that happens.
type Attend struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ChallengeID primitive.ObjectID `bson:"challenge_id" json:"challenge_id"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	IsDraft     bool               `bson:"is_draft" json:"is_draft"`

	IsDeleted    bool   `bson:"is_deleted" json:"is_deleted"`
	DeleteReason string `bson:"delete_reason,omitempty" json:"delete_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// ActivityAt is the last time a like or feedback was attached.
	ActivityAt *time.Time `bson:"activity_at,omitempty" json:"activity_at,omitempty"`
}

// Final reports whether the attend is a live, non-draft submission, i.e.
// whether its author counts as a participant.
func (a Attend) Final() bool { return !a.IsDraft && !a.IsDeleted }

// DefaultAttendTitle is the title given to work submitted without one.
func DefaultAttendTitle(authorID primitive.ObjectID) string {
	return "Translation by " + authorID.Hex()
}
