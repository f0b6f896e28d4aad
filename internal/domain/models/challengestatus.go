package models

// ChallengeStatus is the lifecycle state of a Challenge.
//
//	pending  --approve-->  approved
//	pending  --reject--->  rejected
//	pending  --cancel--->  cancelled
//	pending  --deadline->  deadline
//	approved --cancel--->  cancelled
//	approved --delete--->  deleted
//	approved --deadline->  deadline
//
// rejected, cancelled, deleted and deadline are terminal; only an admin hard
// delete removes a challenge from a terminal state.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeApproved  ChallengeStatus = "approved"
	ChallengeRejected  ChallengeStatus = "rejected"
	ChallengeCancelled ChallengeStatus = "cancelled"
	ChallengeDeleted   ChallengeStatus = "deleted"
	ChallengeDeadline  ChallengeStatus = "deadline"
)

// ChallengeStatuses lists every status in lifecycle order.
var ChallengeStatuses = []ChallengeStatus{
	ChallengePending,
	ChallengeApproved,
	ChallengeRejected,
	ChallengeCancelled,
	ChallengeDeleted,
	ChallengeDeadline,
}

// Valid reports whether s is a known status.
func (s ChallengeStatus) Valid() bool {
	for _, v := range ChallengeStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no client transition leaves s.
func (s ChallengeStatus) Terminal() bool {
	switch s {
	case ChallengeRejected, ChallengeCancelled, ChallengeDeleted, ChallengeDeadline:
		return true
	}
	return false
}

// Live reports whether s is pending or approved. Live challenges may be
// edited by their owner and are picked up by the deadline sweep.
func (s ChallengeStatus) Live() bool {
	return s == ChallengePending || s == ChallengeApproved
}

// OpenForSubmission reports whether final work is accepted in state s.
// Only approved challenges admit submissions.
func (s ChallengeStatus) OpenForSubmission() bool {
	return s == ChallengeApproved
}

// ChallengeAction names a client- or system-driven transition.
type ChallengeAction string

const (
	ActionApprove  ChallengeAction = "approve"
	ActionReject   ChallengeAction = "reject"
	ActionCancel   ChallengeAction = "cancel"
	ActionDelete   ChallengeAction = "delete"
	ActionDeadline ChallengeAction = "deadline"
)

// challengeTransitions maps each action to the statuses it may start from and
// the status it produces.
var challengeTransitions = map[ChallengeAction]struct {
	from []ChallengeStatus
	to   ChallengeStatus
}{
	ActionApprove:  {from: []ChallengeStatus{ChallengePending}, to: ChallengeApproved},
	ActionReject:   {from: []ChallengeStatus{ChallengePending}, to: ChallengeRejected},
	ActionCancel:   {from: []ChallengeStatus{ChallengePending, ChallengeApproved}, to: ChallengeCancelled},
	ActionDelete:   {from: []ChallengeStatus{ChallengeApproved}, to: ChallengeDeleted},
	ActionDeadline: {from: []ChallengeStatus{ChallengePending, ChallengeApproved}, to: ChallengeDeadline},
}

// Transition returns the source states allowed for action and its target.
// ok is false for unknown actions.
func Transition(action ChallengeAction) (from []ChallengeStatus, to ChallengeStatus, ok bool) {
	t, ok := challengeTransitions[action]
	if !ok {
		return nil, "", false
	}
	from = make([]ChallengeStatus, len(t.from))
	copy(from, t.from)
	return from, t.to, true
}

// CanTransition reports whether action is legal from status s.
func CanTransition(s ChallengeStatus, action ChallengeAction) bool {
	from, _, ok := Transition(action)
	if !ok {
		return false
	}
	for _, f := range from {
		if f == s {
			return true
		}
	}
	return false
}
