package participation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/docthrough/internal/app/participation"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/notify"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/docthrough/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type harness struct {
	gate *participation.Gate
	db   *mongo.Database
	fx   *testutil.Fixtures
	rec  *notify.Recorder
	ctx  context.Context
}

func setup(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	rec := &notify.Recorder{}
	return &harness{
		gate: participation.New(db, notify.New(rec, zap.NewNop(), nil), zap.NewNop(), participation.Config{}),
		db:   db,
		fx:   testutil.NewFixtures(t, db),
		rec:  rec,
		ctx:  ctx,
	}
}

func user() models.Actor { return models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser} }
func admin() models.Actor {
	return models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
}
func as(id primitive.ObjectID) models.Actor {
	return models.Actor{UserID: id, Role: models.RoleUser}
}

func final(body string) participation.Submission { return participation.Submission{Content: body} }
func draft(body string) participation.Submission {
	return participation.Submission{Content: body, IsDraft: true}
}

func (h *harness) challenge(t *testing.T, id primitive.ObjectID) models.Challenge {
	t.Helper()
	c, err := challengestore.New(h.db).GetByID(h.ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return c
}

func (h *harness) finals(id primitive.ObjectID) int64 {
	return h.fx.Count(h.ctx, "attends", bson.M{"challenge_id": id, "is_draft": false, "is_deleted": false})
}

func TestSubmit_CapacityHoldsUnderConcurrency(t *testing.T) {
	h := setup(t)
	const capacity, callers = 3, 12
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: capacity})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.gate.Submit(h.ctx, user(), c.ID, final("translation"))
		}(i)
	}
	wg.Wait()

	ok, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrCapacityFull):
			full++
			if !strings.Contains(err.Error(), fmt.Sprintf("current=%d, max=%d", capacity, capacity)) {
				t.Errorf("capacity message = %q", err.Error())
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != capacity || full != callers-capacity {
		t.Errorf("accepted=%d full=%d, want %d and %d", ok, full, capacity, callers-capacity)
	}
	if got := h.challenge(t, c.ID).ParticipantCount; got != capacity {
		t.Errorf("participant_count = %d, want %d", got, capacity)
	}
	if got := h.finals(c.ID); got != capacity {
		t.Errorf("final attends = %d, want %d", got, capacity)
	}
}

func TestSubmit_OneFinalPerUserUnderConcurrency(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 10})
	author := user()

	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	ids := make([]primitive.ObjectID, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := h.gate.Submit(h.ctx, author, c.ID, final("mine"))
			errs[i], ids[i] = err, a.ID
		}(i)
	}
	wg.Wait()

	var winner primitive.ObjectID
	ok := 0
	for i, err := range errs {
		if err == nil {
			ok++
			winner = ids[i]
		}
	}
	if ok != 1 {
		t.Fatalf("accepted = %d, want 1 (errs %v)", ok, errs)
	}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("err = %v, want conflict", err)
			continue
		}
		if !strings.Contains(err.Error(), winner.Hex()) {
			t.Errorf("conflict %q does not name existing submission %s", err.Error(), winner.Hex())
		}
	}
	if got := h.challenge(t, c.ID).ParticipantCount; got != 1 {
		t.Errorf("participant_count = %d, want 1", got)
	}
}

func TestSubmit_DraftsAreExempt(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 2})
	h.fx.CreateAttend(h.ctx, c.ID, primitive.NewObjectID(), false)
	author := user()
	if _, err := h.gate.Submit(h.ctx, author, c.ID, final("first")); err != nil {
		t.Fatalf("final submit: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := h.gate.Submit(h.ctx, author, c.ID, draft(fmt.Sprintf("draft %d", i))); err != nil {
			t.Fatalf("draft %d: %v", i, err)
		}
	}
	if _, err := h.gate.Submit(h.ctx, user(), c.ID, draft("")); err != nil {
		t.Errorf("empty draft on a full challenge: %v", err)
	}
	if got := h.challenge(t, c.ID).ParticipantCount; got != 2 {
		t.Errorf("participant_count = %d, want 2", got)
	}

	pending := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Status: models.ChallengePending})
	if _, err := h.gate.Submit(h.ctx, author, pending.ID, draft("early")); err != nil {
		t.Errorf("draft on pending challenge: %v", err)
	}

	page, err := h.gate.ListDrafts(h.ctx, author, c.ID, paging.Defaults())
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(page.Items) != 5 {
		t.Errorf("drafts = %d, want 5", len(page.Items))
	}
}

func TestSubmit_RejectsWhenNotOpen(t *testing.T) {
	h := setup(t)
	u := user()

	tests := []struct {
		name   string
		status models.ChallengeStatus
		want   error
	}{
		{"pending", models.ChallengePending, apperr.ErrInvalidState},
		{"rejected", models.ChallengeRejected, apperr.ErrInvalidState},
		{"cancelled", models.ChallengeCancelled, apperr.ErrInvalidState},
		{"deadline", models.ChallengeDeadline, apperr.ErrInvalidState},
		{"deleted", models.ChallengeDeleted, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Status: tt.status})
			_, err := h.gate.Submit(h.ctx, u, c.ID, final("late"))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if got := h.finals(c.ID); got != 0 {
				t.Errorf("final attends = %d, want 0", got)
			}
		})
	}

	if _, err := h.gate.Submit(h.ctx, u, primitive.NewObjectID(), final("x")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing challenge err = %v, want not found", err)
	}
	if _, err := h.gate.Submit(h.ctx, models.Actor{}, primitive.NewObjectID(), final("x")); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous err = %v, want unauthenticated", err)
	}
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	if _, err := h.gate.Submit(h.ctx, u, c.ID, final("   ")); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty final err = %v, want validation", err)
	}
}

func TestSubmit_DefaultTitleAndNotification(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	u := user()

	a, err := h.gate.Submit(h.ctx, u, c.ID, final("body"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Title != models.DefaultAttendTitle(u.UserID) {
		t.Errorf("Title = %q, want default", a.Title)
	}
	sent := h.rec.For(u.UserID)
	if len(sent) != 1 || sent[0].Category != models.NotifyAttend || !strings.Contains(sent[0].Message, a.ID.Hex()) {
		t.Errorf("notifications = %+v, want one ATTEND naming the submission", sent)
	}
}

// Challenge X has capacity 2; A, B and C submit at once. Two are admitted,
// the third gets current=2, max=2 and can still save a draft.
func TestSubmit_ThreeUsersTwoSlots(t *testing.T) {
	h := setup(t)
	x := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 2})
	users := []models.Actor{user(), user(), user()}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u models.Actor) {
			defer wg.Done()
			_, errs[i] = h.gate.Submit(h.ctx, u, x.ID, final("same payload"))
		}(i, u)
	}
	wg.Wait()

	rejected := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if rejected != -1 {
			t.Fatalf("more than one rejection: %v", errs)
		}
		rejected = i
		if !errors.Is(err, apperr.ErrCapacityFull) || !strings.Contains(err.Error(), "current=2, max=2") {
			t.Errorf("rejection = %v, want capacity full current=2, max=2", err)
		}
	}
	if rejected == -1 {
		t.Fatal("all three were admitted")
	}
	if _, err := h.gate.Submit(h.ctx, users[rejected], x.ID, draft("same payload")); err != nil {
		t.Errorf("draft after rejection: %v", err)
	}
}

func TestSoftDelete_CascadesAndFreesSlot(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 2})
	author := user()
	a, err := h.gate.Submit(h.ctx, author, c.ID, final("work"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.gate.Submit(h.ctx, user(), c.ID, final("other")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	h.fx.CreateLike(h.ctx, a.ID, primitive.NewObjectID())
	h.fx.CreateLike(h.ctx, a.ID, primitive.NewObjectID())
	h.fx.CreateFeedback(h.ctx, a.ID, primitive.NewObjectID(), "good")

	if _, err := h.gate.SoftDelete(h.ctx, user(), a.ID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("stranger delete err = %v, want forbidden", err)
	}

	h.rec.Reset()
	got, err := h.gate.SoftDelete(h.ctx, author, a.ID, "wrong file")
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if !got.IsDeleted || got.DeleteReason != "wrong file" {
		t.Errorf("deleted = %+v", got)
	}
	if n := h.fx.Count(h.ctx, "likes", bson.M{"attend_id": a.ID}); n != 0 {
		t.Errorf("likes left = %d", n)
	}
	if n := h.fx.Count(h.ctx, "feedbacks", bson.M{"attend_id": a.ID}); n != 0 {
		t.Errorf("feedback left = %d", n)
	}
	if n := h.fx.Count(h.ctx, "attends", bson.M{"_id": a.ID}); n != 1 {
		t.Error("soft delete must keep the row")
	}
	if cnt := h.challenge(t, c.ID).ParticipantCount; cnt != 1 {
		t.Errorf("participant_count = %d, want 1", cnt)
	}
	sent := h.rec.For(author.UserID)
	if len(sent) != 1 || !strings.Contains(sent[0].Message, a.ID.Hex()) || !strings.Contains(sent[0].Message, "wrong file") {
		t.Errorf("notifications = %+v", sent)
	}

	if _, err := h.gate.Get(h.ctx, author, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get deleted err = %v, want not found", err)
	}
	if _, err := h.gate.SoftDelete(h.ctx, admin(), a.ID, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}

	// The author may submit again into the freed slot.
	if _, err := h.gate.Submit(h.ctx, author, c.ID, final("fixed")); err != nil {
		t.Errorf("resubmit after delete: %v", err)
	}
}

func TestSoftDelete_ConcurrentReleasesOnce(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 3})
	author := user()
	a, err := h.gate.Submit(h.ctx, author, c.ID, final("work"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	h.fx.CreateAttend(h.ctx, c.ID, primitive.NewObjectID(), false)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.gate.SoftDelete(h.ctx, author, a.ID, "")
		}()
	}
	wg.Wait()

	if cnt := h.challenge(t, c.ID).ParticipantCount; cnt != 1 {
		t.Errorf("participant_count = %d, want 1", cnt)
	}
}

func TestChangesNeedOpenChallenge(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Status: models.ChallengeDeadline})
	author := primitive.NewObjectID()
	fin := h.fx.CreateAttend(h.ctx, c.ID, author, false)
	dr := h.fx.CreateAttend(h.ctx, c.ID, author, true)
	body := "late edit"

	tests := []struct {
		name string
		id   primitive.ObjectID
	}{
		{"final", fin.ID},
		{"draft", dr.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.gate.SoftDelete(h.ctx, as(author), tt.id, ""); !errors.Is(err, apperr.ErrInvalidState) {
				t.Errorf("delete on closed challenge err = %v, want invalid state", err)
			}
			if _, err := h.gate.Update(h.ctx, as(author), tt.id, participation.Changes{Content: &body}); !errors.Is(err, apperr.ErrInvalidState) {
				t.Errorf("update on closed challenge err = %v, want invalid state", err)
			}
			if n := h.fx.Count(h.ctx, "attends", bson.M{"_id": tt.id, "is_deleted": false}); n != 1 {
				t.Error("attend changed on a closed challenge")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	author := user()
	a, err := h.gate.Submit(h.ctx, author, c.ID, participation.Submission{Title: "Mine", Content: "v1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	str := func(s string) *string { return &s }

	h.rec.Reset()
	got, err := h.gate.Update(h.ctx, author, a.ID, participation.Changes{Content: str("v2")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Content != "<p>v2</p>" || got.Title != "Mine" {
		t.Errorf("updated = %+v", got)
	}
	if sent := h.rec.For(author.UserID); len(sent) != 1 || !strings.Contains(sent[0].Message, a.ID.Hex()) {
		t.Errorf("notifications = %+v, want one naming the submission", sent)
	}

	got, err = h.gate.Update(h.ctx, admin(), a.ID, participation.Changes{Title: str("")})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if got.Title != models.DefaultAttendTitle(author.UserID) {
		t.Errorf("Title = %q, want default", got.Title)
	}

	tests := []struct {
		name  string
		actor models.Actor
		ch    participation.Changes
		want  error
	}{
		{"stranger", user(), participation.Changes{Content: str("x")}, apperr.ErrForbidden},
		{"empty content", author, participation.Changes{Content: str(" ")}, apperr.ErrValidation},
		{"nothing", author, participation.Changes{}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.gate.Update(h.ctx, tt.actor, a.ID, tt.ch); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	closed := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Status: models.ChallengeCancelled})
	old := h.fx.CreateAttend(h.ctx, closed.ID, author.UserID, false)
	if _, err := h.gate.Update(h.ctx, author, old.ID, participation.Changes{Content: str("x")}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("update on closed challenge err = %v, want invalid state", err)
	}
}

func TestToggleLike(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	author := primitive.NewObjectID()
	a := h.fx.CreateAttend(h.ctx, c.ID, author, false)
	fan := user()

	want := []models.LikeResult{models.LikeAdded, models.LikeRemoved, models.LikeAdded}
	for i, w := range want {
		got, err := h.gate.ToggleLike(h.ctx, fan, a.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != w {
			t.Errorf("toggle %d = %s, want %s", i, got, w)
		}
	}
	n, err := h.gate.LikeCount(h.ctx, fan, a.ID)
	if err != nil || n != 1 {
		t.Errorf("LikeCount = %d, %v; want 1", n, err)
	}
	if liked, _ := h.gate.Liked(h.ctx, fan, a.ID); !liked {
		t.Error("Liked = false after add")
	}
	if got := len(h.rec.For(author)); got != 2 {
		t.Errorf("author notifications = %d, want 2", got)
	}

	d := h.fx.CreateAttend(h.ctx, c.ID, author, true)
	if _, err := h.gate.ToggleLike(h.ctx, as(author), d.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("like draft err = %v, want invalid state", err)
	}
	if _, err := h.gate.ToggleLike(h.ctx, fan, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("like someone else's draft err = %v, want not found", err)
	}
}

func TestToggleLike_DoubleClickRace(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	a := h.fx.CreateAttend(h.ctx, c.ID, primitive.NewObjectID(), false)
	fan := user()

	for round := 0; round < 10; round++ {
		var wg sync.WaitGroup
		results := make([]models.LikeResult, 2)
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = h.gate.ToggleLike(h.ctx, fan, a.ID)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				t.Fatalf("round %d: toggle error leaked: %v", round, err)
			}
		}
		if results[0] == models.LikeAdded && results[1] == models.LikeAdded {
			t.Fatalf("round %d: both toggles reported added", round)
		}
		n := h.fx.Count(h.ctx, "likes", bson.M{"attend_id": a.ID, "user_id": fan.UserID})
		if n > 1 {
			t.Fatalf("round %d: %d like rows", round, n)
		}
	}
}

func TestFeedback(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	author := primitive.NewObjectID()
	a := h.fx.CreateAttend(h.ctx, c.ID, author, false)
	reviewer := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleExpert}

	fb, err := h.gate.AddFeedback(h.ctx, reviewer, a.ID, "Check the second paragraph.")
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if fb.AuthorID != reviewer.UserID || fb.AttendID != a.ID {
		t.Errorf("feedback = %+v", fb)
	}
	sent := h.rec.For(author)
	if len(sent) != 1 || sent[0].Category != models.NotifyFeedback {
		t.Errorf("author notifications = %+v, want one FEEDBACK", sent)
	}

	if _, err := h.gate.AddFeedback(h.ctx, reviewer, a.ID, "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty feedback err = %v, want validation", err)
	}

	list, err := h.gate.ListFeedback(h.ctx, user(), a.ID, 0)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(list) != 1 || list[0].ID != fb.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestSoftDelete_RacingLikesAndFeedbackLeaveNothing(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 100})

	for round := 0; round < 10; round++ {
		author := user()
		a, err := h.gate.Submit(h.ctx, author, c.ID, final(fmt.Sprintf("work %d", round)))
		if err != nil {
			t.Fatalf("round %d: Submit: %v", round, err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = h.gate.ToggleLike(h.ctx, user(), a.ID)
			}()
			go func() {
				defer wg.Done()
				_, _ = h.gate.AddFeedback(h.ctx, user(), a.ID, "looks good")
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.gate.SoftDelete(h.ctx, author, a.ID, ""); err != nil {
				t.Errorf("round %d: SoftDelete: %v", round, err)
			}
		}()
		wg.Wait()

		if n := h.fx.Count(h.ctx, "likes", bson.M{"attend_id": a.ID}); n != 0 {
			t.Errorf("round %d: %d likes left on deleted submission", round, n)
		}
		if n := h.fx.Count(h.ctx, "feedbacks", bson.M{"attend_id": a.ID}); n != 0 {
			t.Errorf("round %d: %d feedback left on deleted submission", round, n)
		}
	}
}

func TestLikeAndFeedbackOnDeletedAttend(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{})
	author := user()
	a, err := h.gate.Submit(h.ctx, author, c.ID, final("work"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.gate.SoftDelete(h.ctx, author, a.ID, ""); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := h.gate.ToggleLike(h.ctx, admin(), a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("like deleted err = %v, want not found", err)
	}
	if _, err := h.gate.AddFeedback(h.ctx, admin(), a.ID, "late"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("feedback on deleted err = %v, want not found", err)
	}
}

func TestListByChallenge(t *testing.T) {
	h := setup(t)
	c := h.fx.CreateChallenge(h.ctx, testutil.ChallengeOpts{Capacity: 5})
	for i := 0; i < 3; i++ {
		h.fx.CreateAttend(h.ctx, c.ID, primitive.NewObjectID(), false)
	}
	h.fx.CreateAttend(h.ctx, c.ID, primitive.NewObjectID(), true)

	page, err := h.gate.ListByChallenge(h.ctx, user(), c.ID, paging.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListByChallenge: %v", err)
	}
	if len(page.Items) != 2 || page.Next == "" {
		t.Errorf("page = %d items, next %q", len(page.Items), page.Next)
	}
	after, _ := primitive.ObjectIDFromHex(page.Next)
	rest, err := h.gate.ListByChallenge(h.ctx, user(), c.ID, paging.Params{Limit: 2, After: after})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(rest.Items) != 1 || rest.Next != "" {
		t.Errorf("second page = %d items, next %q", len(rest.Items), rest.Next)
	}
}
