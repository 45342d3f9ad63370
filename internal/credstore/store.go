// Package credstore persists the current session record: the bearer token
// and the identity of the signed-in user.
//
// A Store is the single owner of that record for the process. Mutations are
// serialized by one mutex, and reads never fail: missing or unreadable values
// come back as absent. Write failures are environment faults and go to the
// fault handler instead of being returned.
package credstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dukerupert/supplyline/internal/model"
)

// Persisted key names.
const (
	KeyToken            = "token"
	KeyUserID           = "userId"
	KeyUsername         = "username"
	KeyRoleID           = "roleId"
	KeySubscriptionTier = "subscriptionTier"
)

const opTimeout = 5 * time.Second

// Reader is the read-only view handed to feature repositories.
type Reader interface {
	Token() (string, bool)
	UserID() (int64, bool)
	Username() (string, bool)
	RoleID() (int64, bool)
	SubscriptionTier() int
	IsLoggedIn() bool
}

// TierWriter updates the one field a subscription change is allowed to touch.
type TierWriter interface {
	SetSubscriptionTier(tier int)
}

// FaultError reports a failed write to the backend.
type FaultError struct {
	Op  string
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

type Option func(*Store)

// WithSealer encrypts the token before it reaches the backend.
func WithSealer(s *Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// WithFaultHandler replaces the default handler, which panics.
func WithFaultHandler(fn func(error)) Option {
	return func(st *Store) { st.fault = fn }
}

type Store struct {
	backend Backend
	sealer  *Sealer
	logger  *slog.Logger
	fault   func(error)

	once   sync.Once
	mu     sync.RWMutex
	values map[string]string
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		fault:   func(err error) { panic(err) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load materializes the record on first access. A token that cannot be
// unsealed belongs to a previous installation; the whole record is dropped.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	values, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("load credentials", "error", err)
		values = nil
	}
	if values == nil {
		values = make(map[string]string)
	}

	if sealed, ok := values[KeyToken]; ok && s.sealer != nil {
		token, err := s.sealer.Open(sealed)
		if err != nil {
			s.logger.Warn("discarding unreadable session", "error", err)
			if err := s.backend.Clear(ctx); err != nil {
				s.logger.Error("clear unreadable session", "error", err)
			}
			values = make(map[string]string)
		} else {
			values[KeyToken] = token
		}
	}
	s.values = values
}

func (s *Store) get(key string) (string, bool) {
	s.once.Do(s.load)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) getInt(key string) (int64, bool) {
	v, ok := s.get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.logger.Warn("malformed credential value", "key", key, "error", err)
		return 0, false
	}
	return n, true
}

// write persists values as one group and, only on success, applies them to
// the in-memory record. Callers hold s.mu.
func (s *Store) write(op string, values map[string]string) {
	stored := make(map[string]string, len(values))
	for k, v := range values {
		stored[k] = v
	}
	if token, ok := stored[KeyToken]; ok && s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			s.fail(op, err)
			return
		}
		stored[KeyToken] = sealed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Save(ctx, stored); err != nil {
		s.fail(op, err)
		return
	}
	for k, v := range values {
		s.values[k] = v
	}
}

func (s *Store) fail(op string, err error) {
	s.logger.Error("credential store write failed", "op", op, "error", err)
	s.fault(&FaultError{Op: op, Err: err})
}

func (s *Store) SaveToken(token string) {
	s.once.Do(s.load)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write("save token", map[string]string{KeyToken: token})
}

func (s *Store) SaveIdentity(id model.Identity) {
	s.once.Do(s.load)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write("save identity", identityValues(id))
}

// Establish writes the token and the identity as a single group, so no
// reader can observe one without the other.
func (s *Store) Establish(token string, id model.Identity) {
	s.once.Do(s.load)
	s.mu.Lock()
	defer s.mu.Unlock()
	values := identityValues(id)
	values[KeyToken] = token
	s.write("establish session", values)
}

func (s *Store) SetSubscriptionTier(tier int) {
	s.once.Do(s.load)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write("save subscription tier", map[string]string{KeySubscriptionTier: strconv.Itoa(tier)})
}

// ClearAll erases every key. Subsequent reads return defaults.
func (s *Store) ClearAll() {
	s.once.Do(s.load)
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Clear(ctx); err != nil {
		s.fail("clear", err)
		return
	}
	clear(s.values)
}

func identityValues(id model.Identity) map[string]string {
	return map[string]string{
		KeyUserID:           strconv.FormatInt(id.UserID, 10),
		KeyUsername:         id.Username,
		KeyRoleID:           strconv.FormatInt(id.RoleID, 10),
		KeySubscriptionTier: strconv.Itoa(id.SubscriptionTier),
	}
}

// Token reports an empty stored token as absent.
func (s *Store) Token() (string, bool) {
	t, ok := s.get(KeyToken)
	if t == "" {
		return "", false
	}
	return t, ok
}

func (s *Store) UserID() (int64, bool) {
	return s.getInt(KeyUserID)
}

func (s *Store) Username() (string, bool) {
	return s.get(KeyUsername)
}

func (s *Store) RoleID() (int64, bool) {
	return s.getInt(KeyRoleID)
}

// SubscriptionTier defaults to model.TierNone.
func (s *Store) SubscriptionTier() int {
	n, ok := s.getInt(KeySubscriptionTier)
	if !ok {
		return model.TierNone
	}
	return int(n)
}

func (s *Store) IsLoggedIn() bool {
	_, ok := s.Token()
	return ok
}

// Session returns a consistent snapshot, with model.UnknownID for absent ids.
func (s *Store) Session() model.Session {
	s.once.Do(s.load)
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.LoggedOut()
	snap.Token = s.values[KeyToken]
	snap.Username = s.values[KeyUsername]
	if n, err := strconv.ParseInt(s.values[KeyUserID], 10, 64); err == nil {
		snap.UserID = n
	}
	if n, err := strconv.ParseInt(s.values[KeyRoleID], 10, 64); err == nil {
		snap.RoleID = n
	}
	if n, err := strconv.Atoi(s.values[KeySubscriptionTier]); err == nil {
		snap.SubscriptionTier = n
	}
	return snap
}
