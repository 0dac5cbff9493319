package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ink2deck/internal/navigation"
)

type SessionStore struct {
	backend Backend
	ttl     time.Duration
}

func NewSessionStore(backend Backend, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{backend: backend, ttl: ttl}
}

// Create starts a fresh landing-screen session under a random id.
func (s *SessionStore) Create(ctx context.Context) (*navigation.Session, error) {
	sess := navigation.NewSession(uuid.NewString())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*navigation.Session, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	raw, ok, err := s.backend.Get(ctx, sessionKey(id))
	if err != nil || !ok {
		return nil, false, err
	}

	var sess navigation.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &sess, true, nil
}

// Save writes the session and restarts its expiry.
func (s *SessionStore) Save(ctx context.Context, sess *navigation.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	return s.backend.Set(ctx, sessionKey(sess.ID), payload, s.ttl)
}

func sessionKey(id string) string {
	return "ink2deck:session:" + id
}
