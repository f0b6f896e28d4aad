package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/auth"
)

func TestAllow_WindowAndReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request in the window should be refused")
	}
	if !l.Allow("b") {
		t.Error("keys are counted separately")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining(a) = %d, want 0", got)
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Error("a new window should allow again")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining(a) = %d, want 1", got)
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	if !l.Allow("x") {
		t.Error("nil limiter refused a request")
	}
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestMiddleware_PerUser(t *testing.T) {
	l := New(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: userID, Role: "user"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("u1"); got != http.StatusOK {
		t.Fatalf("first = %d", got)
	}
	if got := send("u1"); got != http.StatusTooManyRequests {
		t.Errorf("second from same user = %d, want 429", got)
	}
	if got := send("u2"); got != http.StatusOK {
		t.Errorf("other user = %d, want 200", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "9.9.9.9:1", "5.6.7.8"},
		{"remote with port", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
