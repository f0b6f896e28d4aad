package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/auditlog"
	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/docthrough/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:              "mongodb://localhost:27017",
		MongoDatabase:         "docthrough_test",
		DeadlineSweepInterval: time.Hour,
		NotificationRetention: 720 * time.Hour,
		RetryAttempts:         3,
		AuditLogModeration:    auditlog.All,
		AuditLogSystem:        auditlog.DB,
		MetricsEnabled:        true,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "invalid MongoDB URI"},
		{"no database", func(c *AppConfig) { c.MongoDatabase = "" }, "mongo_database"},
		{"zero interval", func(c *AppConfig) { c.DeadlineSweepInterval = 0 }, "deadline_sweep_interval"},
		{"zero retention", func(c *AppConfig) { c.NotificationRetention = 0 }, "notification_retention"},
		{"no retries", func(c *AppConfig) { c.RetryAttempts = 0 }, "retry_attempts"},
		{"negative rate limit", func(c *AppConfig) { c.WriteRateLimit = -1 }, "write_rate_limit"},
		{"bad audit setting", func(c *AppConfig) { c.AuditLogSystem = "everywhere" }, "audit_log_system"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// server builds the full router against a test database. signIn returns a
// session cookie for the given role.
func server(t *testing.T) (*httptest.Server, func(role string) (*http.Cookie, primitive.ObjectID)) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	svc, err := buildServices(deps, validConfig(), testLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("buildServices: %v", err)
	}
	deps.Services = svc

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, testLogger())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	srv := httptest.NewServer(newRouter(deps, sm, nil, false, testLogger()))
	t.Cleanup(srv.Close)

	signIn := func(role string) (*http.Cookie, primitive.ObjectID) {
		id := primitive.NewObjectID()
		rec := httptest.NewRecorder()
		if err := sm.SignIn(rec, httptest.NewRequest(http.MethodGet, "/", nil), auth.SessionUser{ID: id.Hex(), Name: role, Role: role}); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) == 0 {
			t.Fatal("SignIn set no cookie")
		}
		return cookies[0], id
	}
	return srv, signIn
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, c *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c != nil {
		req.AddCookie(c)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_AnonymousAndUnknown(t *testing.T) {
	srv, _ := server(t)

	if resp := do(t, srv, http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d, want 200", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, "/challenges", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous /challenges = %d, want 401", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, "/nowhere", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("/nowhere = %d, want 404", resp.StatusCode)
	}
}

func TestRouter_ChallengeFlow(t *testing.T) {
	srv, signIn := server(t)
	ownerCookie, _ := signIn(models.RoleUser)
	adminCookie, _ := signIn(models.RoleAdmin)
	authorCookie, _ := signIn(models.RoleUser)

	proposal := `{"title":"Router guide","content":"Translate it.","source":"https://example.com/r",` +
		`"field":"web","doc_type":"official","capacity":2,"deadline":"` +
		time.Now().Add(24*time.Hour).UTC().Format(time.RFC3339) + `"}`
	resp := do(t, srv, http.MethodPost, "/challenges", proposal, ownerCookie)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("propose = %d, want 201", resp.StatusCode)
	}
	var c models.Challenge
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := "/challenges/" + c.ID.Hex()

	// Not open yet.
	if resp := do(t, srv, http.MethodPost, base+"/attends", `{"content":"x"}`, authorCookie); resp.StatusCode != http.StatusConflict {
		t.Errorf("submit to pending = %d, want 409", resp.StatusCode)
	}
	// Owner cannot approve; admin can.
	if resp := do(t, srv, http.MethodPost, base+"/approve", "", ownerCookie); resp.StatusCode != http.StatusForbidden {
		t.Errorf("owner approve = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodPost, base+"/approve", "", adminCookie); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin approve = %d, want 200", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodPost, base+"/attends", `{"content":"translated"}`, authorCookie); resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit = %d, want 201", resp.StatusCode)
	}

	// The owner was told about the approval, the author got a receipt.
	for _, tc := range []struct {
		who      string
		cookie   *http.Cookie
		category string
	}{
		{"owner", ownerCookie, models.NotifyApproval},
		{"author", authorCookie, models.NotifyAttend},
	} {
		resp := do(t, srv, http.MethodGet, "/notifications", "", tc.cookie)
		var inbox struct {
			Items  []models.Notification `json:"items"`
			Unread int64                 `json:"unread"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&inbox); err != nil {
			t.Fatalf("decode inbox: %v", err)
		}
		if inbox.Unread != 1 || len(inbox.Items) != 1 || inbox.Items[0].Category != tc.category {
			t.Errorf("%s inbox = %+v, want one %s", tc.who, inbox, tc.category)
		}
	}

	// Audit is admin-only.
	if resp := do(t, srv, http.MethodGet, base+"/audit", "", ownerCookie); resp.StatusCode != http.StatusForbidden {
		t.Errorf("owner audit = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, base+"/audit", "", adminCookie); resp.StatusCode != http.StatusOK {
		t.Errorf("admin audit = %d, want 200", resp.StatusCode)
	}
}

func TestBuildServices_SchedulerStops(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, err := buildServices(DBDeps{MongoClient: db.Client(), MongoDatabase: db}, validConfig(), testLogger(), nil)
	if err != nil {
		t.Fatalf("buildServices: %v", err)
	}
	if svc.Metrics != nil {
		t.Error("metrics built without a registry")
	}
	svc.Scheduler.Start()
	svc.Scheduler.Stop()
	svc.Scheduler.Stop()
}
