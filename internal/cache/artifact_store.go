package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ink2deck/internal/model"
)

// ArtifactStore holds the latest conversion outputs of each session.
type ArtifactStore struct {
	backend Backend
	ttl     time.Duration
}

func NewArtifactStore(backend Backend, ttl time.Duration) *ArtifactStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ArtifactStore{backend: backend, ttl: ttl}
}

func (s *ArtifactStore) Put(ctx context.Context, sessionID string, artifacts *model.Artifacts) error {
	payload, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts failed: %w", err)
	}
	return s.backend.Set(ctx, artifactKey(sessionID), payload, s.ttl)
}

func (s *ArtifactStore) Get(ctx context.Context, sessionID string) (*model.Artifacts, bool, error) {
	raw, ok, err := s.backend.Get(ctx, artifactKey(sessionID))
	if err != nil || !ok {
		return nil, false, err
	}

	var a model.Artifacts
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false, fmt.Errorf("unmarshal artifacts failed: %w", err)
	}
	return &a, true, nil
}

func (s *ArtifactStore) Delete(ctx context.Context, sessionID string) error {
	return s.backend.Delete(ctx, artifactKey(sessionID))
}

func artifactKey(sessionID string) string {
	return "ink2deck:artifacts:" + sessionID
}
