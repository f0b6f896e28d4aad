package notify

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery is one notification captured by a Recorder.
type Delivery struct {
	UserID   primitive.ObjectID
	Category string
	Message  string
}

// Recorder is an in-memory Sink. Fail, when set, is returned for every
// delivery to the listed users.
type Recorder struct {
	mu   sync.Mutex
	sent []Delivery
	Fail map[primitive.ObjectID]error
}

func (r *Recorder) Notify(_ context.Context, userID primitive.ObjectID, category, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail[userID]; err != nil {
		return err
	}
	r.sent = append(r.sent, Delivery{UserID: userID, Category: category, Message: message})
	return nil
}

// Sent returns a copy of the successful deliveries in order.
func (r *Recorder) Sent() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.sent))
	copy(out, r.sent)
	return out
}

// For returns the deliveries addressed to userID.
func (r *Recorder) For(userID primitive.ObjectID) []Delivery {
	var out []Delivery
	for _, d := range r.Sent() {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out
}

// Reset clears the captured deliveries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
