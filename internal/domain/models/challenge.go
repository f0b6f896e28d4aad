package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Challenge is a proposed translation task.
//
// NOTE:
//   - Status is the only stored lifecycle state. The approved/rejected/closed
//     views are derived from it (see Approved, Rejected, Closed).
//   - ParticipantCount is the admission counter used for capacity checks. It
//     moves only through conditional updates in the challenges store and always
//     equals the number of final, non-deleted attends.
type Challenge struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Seq     int64              `bson:"seq" json:"seq"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"-"` // lowercase, diacritics-stripped
	Content string             `bson:"content" json:"content"`
	Source  string             `bson:"source" json:"source"`
	Field   string             `bson:"field" json:"field"`
	DocType string             `bson:"doc_type" json:"doc_type"`

	Capacity         int       `bson:"capacity" json:"capacity"`
	ParticipantCount int       `bson:"participant_count" json:"participant_count"`
	Deadline         time.Time `bson:"deadline" json:"deadline"`

	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Status      ChallengeStatus     `bson:"status" json:"status"`
	Reason      string              `bson:"reason,omitempty" json:"reason,omitempty"`
	ModeratedBy *primitive.ObjectID `bson:"moderated_by,omitempty" json:"moderated_by,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	ClosedAt  *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`

	// NoticesPending is set by the deadline transition and cleared by the
	// sweep that delivers the deadline notices.
	NoticesPending bool       `bson:"notices_pending,omitempty" json:"-"`
	NoticeRun      string     `bson:"notice_run,omitempty" json:"-"`
	NotifiedAt     *time.Time `bson:"notified_at,omitempty" json:"-"`
}

// Approved reports whether an admin approved the challenge and it is still live.
func (c Challenge) Approved() bool { return c.Status == ChallengeApproved }

// Rejected reports whether an admin rejected the proposal.
func (c Challenge) Rejected() bool { return c.Status == ChallengeRejected }

// Closed reports whether the challenge stopped accepting work because the
// owner cancelled it or its deadline passed.
func (c Challenge) Closed() bool {
	return c.Status == ChallengeCancelled || c.Status == ChallengeDeadline
}

// Deleted reports whether the challenge was soft-deleted.
func (c Challenge) Deleted() bool { return c.Status == ChallengeDeleted }

// OpenForSubmission reports whether final work may be submitted.
func (c Challenge) OpenForSubmission() bool { return c.Status.OpenForSubmission() }

// IsOwner reports whether userID proposed the challenge.
func (c Challenge) IsOwner(userID primitive.ObjectID) bool {
	return !userID.IsZero() && c.OwnerID == userID
}
