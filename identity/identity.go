package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"techlearn/database"
	"techlearn/logger"
	"techlearn/models"
)

const currentUserKey = "currentUser"

// ProgressLoader is the progress state that follows the active identity.
type ProgressLoader interface {
	Load(ctx context.Context, user models.User) error
	Reset()
}

// Store keeps the active identity of one device. The identity record lives in the
// device's own key space.
type Store struct {
	mu       sync.Mutex
	kv       database.KVStore
	progress ProgressLoader
	log      *logger.Logger

	current    *models.User
	resetHooks []func()
}

func NewStore(kv database.KVStore, progress ProgressLoader, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, progress: progress, log: log}
}

// OnReset registers fn to run when the identity is cleared or replaced by another user.
func (s *Store) OnReset(fn func()) {
	s.mu.Lock()
	s.resetHooks = append(s.resetHooks, fn)
	s.mu.Unlock()
}

// Login records user as the active identity and loads its progress. The identity is
// only switched once the record has been stored. Switching to a different user drops the
// previous user's progress and view state first.
func (s *Store) Login(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user = models.User{Email: user.Key()}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	if err := s.kv.Put(ctx, currentUserKey, raw); err != nil {
		return fmt.Errorf("persist current user: %w", err)
	}
	if s.current != nil && s.current.Key() != user.Key() {
		s.reset()
	}
	s.current = &user

	if err := s.progress.Load(ctx, user); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	return nil
}

// Logout clears the identity, the progress state and every registered view state.
// The in-memory identity is cleared even when removing the record fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.reset()

	if err := s.kv.Delete(ctx, currentUserKey); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

func (s *Store) reset() {
	s.progress.Reset()
	for _, fn := range s.resetHooks {
		fn()
	}
}

// Current returns the active identity or nil.
func (s *Store) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Restore reads the persisted identity at session start. An unreadable record is
// logged and treated as no identity.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, currentUserKey)
	if err != nil {
		return fmt.Errorf("read current user: %w", err)
	}
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil || user.Key() == "" {
		s.log.Warn("Ignoring unreadable current user record", "error", err)
		return nil
	}
	s.current = &user

	if err := s.progress.Load(ctx, user); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	return nil
}
