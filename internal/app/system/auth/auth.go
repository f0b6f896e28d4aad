// Package auth reads the signed-in user from the session cookie issued by
// the identity service and guards routes on it.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	DefaultSessionName = "docthrough-session"

	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userRole  = "user_role"
)

// SessionUser is what the session carries and what handlers see in
// r.Context().
type SessionUser struct {
	ID   string
	Name string
	Role string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user placed in context by LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser returns r with u in its context. Used by handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager wraps the cookie store shared with the identity service.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. An empty key is replaced by a
// random one, which only works for a single process and is meant for local
// development.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(sessionKey)
	switch {
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("session key is empty and a random key could not be generated")
		}
		logger.Warn("session key is empty; using a random per-process key")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// LoadSessionUser injects the user into context when the session says the
// caller is authenticated. A missing or tampered cookie means anonymous.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.log.Debug("ignoring unreadable session cookie", zap.Error(err))
		}
		if sess != nil {
			if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
				r = withUser(r, &SessionUser{
					ID:   getString(sess, userIDKey),
					Name: getString(sess, userName),
					Role: strings.ToLower(getString(sess, userRole)),
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn writes an authenticated session for u.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userRole] = strings.ToLower(u.Role)
	return sess.Save(r, w)
}

// RequireSignedIn answers 401 with a JSON error body when no user is in
// context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 for anonymous callers and 403 for callers whose
// role is not in allowed.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeError(w, http.StatusForbidden, "forbidden", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": msg})
}
