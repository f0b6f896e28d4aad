package notificationstore_test

import (
	"errors"
	"testing"
	"time"

	notificationstore "github.com/dalemusser/docthrough/internal/app/store/notifications"
	"github.com/dalemusser/docthrough/internal/app/system/notify"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/docthrough/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ notify.Sink = (*notificationstore.Store)(nil)

func TestNotifyAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, other := primitive.NewObjectID(), primitive.NewObjectID()
	for _, msg := range []string{"one", "two", "three"} {
		if err := store.Notify(ctx, user, models.NotifyAttend, msg); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	_ = store.Notify(ctx, other, models.NotifyAttend, "not yours")

	got, err := store.ListByUser(ctx, user, false, paging.Defaults())
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 || got[0].Message != "three" || got[2].Message != "one" {
		t.Errorf("list not newest first: %+v", got)
	}
	if n, _ := store.CountUnread(ctx, user); n != 3 {
		t.Errorf("CountUnread = %d, want 3", n)
	}
}

func TestMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	n, err := store.Create(ctx, models.Notification{UserID: user, Category: models.NotifyApproval, Message: "ok"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = store.Notify(ctx, user, models.NotifyApproval, "second")

	if err := store.MarkRead(ctx, n.ID, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("MarkRead by stranger err = %v, want ErrNoDocuments", err)
	}
	if err := store.MarkRead(ctx, n.ID, user); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, _ := store.ListByUser(ctx, user, true, paging.Defaults())
	if len(unread) != 1 || unread[0].Message != "second" {
		t.Errorf("unread = %+v", unread)
	}

	changed, err := store.MarkAllRead(ctx, user)
	if err != nil || changed != 1 {
		t.Errorf("MarkAllRead = %d,%v, want 1", changed, err)
	}
}

func TestDeleteReadBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	old := time.Now().UTC().Add(-48 * time.Hour)
	coll := db.Collection("notifications")
	docs := []interface{}{
		bson.M{"_id": primitive.NewObjectID(), "user_id": user, "is_read": true, "created_at": old},
		bson.M{"_id": primitive.NewObjectID(), "user_id": user, "is_read": false, "created_at": old},
		bson.M{"_id": primitive.NewObjectID(), "user_id": user, "is_read": true, "created_at": time.Now().UTC()},
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := store.DeleteReadBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteReadBefore = %d,%v, want 1", n, err)
	}
	left, _ := coll.CountDocuments(ctx, bson.M{})
	if left != 2 {
		t.Errorf("remaining = %d, want 2", left)
	}
}
