package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID   string
	Name string
	Role string
}

// ObjectID returns the user's id as an ObjectID.
func (u TestUser) ObjectID() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(u.ID)
	return id
}

func newTestUser(name, role string) TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: name, Role: role}
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser { return newTestUser("Test Admin", models.RoleAdmin) }

// ExpertUser returns a TestUser with expert role.
func ExpertUser() TestUser { return newTestUser("Test Expert", models.RoleExpert) }

// PlainUser returns a TestUser with user role.
func PlainUser() TestUser { return newTestUser("Test User", models.RoleUser) }

// UserWithID returns a user-role TestUser with a fixed id.
func UserWithID(id primitive.ObjectID) TestUser {
	return TestUser{ID: id.Hex(), Name: "Test User", Role: models.RoleUser}
}

// WithUser adds a user to the request context, bypassing the session
// middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	})
}

// NewRequest creates an HTTP request for testing. A non-nil body is
// encoded as JSON.
func NewRequest(method, target string, body any) *http.Request {
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			buf, err := json.Marshal(b)
			if err != nil {
				panic(err)
			}
			rdr = bytes.NewReader(buf)
		}
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, body any, user TestUser) *http.Request {
	return WithUser(NewRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}

// ErrorKind returns the "error" field of a JSON error response.
func (r *ResponseRecorder) ErrorKind(t testing.TB) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	r.DecodeJSON(t, &body)
	return body.Error
}
