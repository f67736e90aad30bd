// Package session owns authenticated identity state. It is the only
// writer of the persisted auth keys; everything else reads identity
// through the facade's derived accessors.
package session

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercato-dev/mercato/internal/store"
)

// Persisted key names. KeyOrderEmail is the legacy per-order identity
// slot, independent of the auth keys: it predates token auth and is
// still what the orders endpoints key on.
const (
	KeyToken      = "auth:token"
	KeyUser       = "auth:user"
	KeyOrderEmail = "orders:user_email"
)

// User is the identity record stored alongside the token.
type User struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Session is the facade over the persistent store. Mutations go through
// Login/Logout only; IsAuthenticated and IsAdmin are derived from the
// current in-memory state, which mirrors the store.
type Session struct {
	kv     *store.KV
	logger *zap.Logger

	token string
	user  *User
}

// Load hydrates a session from the store. A corrupt persisted user
// record degrades to "logged out": both auth keys are scrubbed rather
// than surfacing a parse error to callers.
func Load(kv *store.KV, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{kv: kv, logger: logger}

	token, _, err := kv.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	raw, hasUser, err := kv.Get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user *User
	if hasUser {
		user = &User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			logger.Warn("discarding corrupt stored user record",
				zap.Error(err),
			)
			if err := kv.DeleteMany(KeyToken, KeyUser); err != nil {
				return nil, fmt.Errorf("scrub session: %w", err)
			}
			return s, nil
		}
	}

	s.token = token
	s.user = user
	return s, nil
}

// Login persists the token and user atomically and updates in-memory
// state. The token is treated as opaque; the backend that issued it is
// the trust boundary.
func (s *Session) Login(token string, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.SetMany(map[string]string{
		KeyToken: token,
		KeyUser:  string(raw),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.token = token
	s.user = &user
	return nil
}

// Logout removes both persisted auth keys and resets in-memory state.
// Safe to call when already logged out.
func (s *Session) Logout() error {
	if err := s.kv.DeleteMany(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.token = ""
	s.user = nil
	return nil
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Session) Token() string { return s.token }

// User returns a copy of the stored user, or nil when none is loaded.
func (s *Session) User() *User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool { return s.token != "" }

func (s *Session) IsAdmin() bool { return s.user != nil && s.user.IsAdmin }

// OrderEmail returns the legacy identity value, or "" when unset.
func (s *Session) OrderEmail() string {
	value, _, err := s.kv.Get(KeyOrderEmail)
	if err != nil {
		s.logger.Warn("read order email", zap.Error(err))
		return ""
	}
	return value
}

// SetOrderEmail writes the legacy identity slot.
func (s *Session) SetOrderEmail(email string) error {
	return s.kv.Set(KeyOrderEmail, email)
}

// ClearOrderEmail removes the legacy identity slot.
func (s *Session) ClearOrderEmail() error {
	return s.kv.Delete(KeyOrderEmail)
}
