package app

import (
	"context"
	"fmt"
	"strings"

	"ink2deck/internal/model"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type ConversionLister interface {
	ListByUsername(ctx context.Context, username string, limit int) ([]model.ConversionEvent, error)
}

// HistoryService lists a user's past conversions, newest first. Built without
// a lister, every call fails with ErrStoreUnavailable.
type HistoryService struct {
	events ConversionLister
}

func NewHistoryService(events ConversionLister) *HistoryService {
	return &HistoryService{events: events}
}

func (s *HistoryService) List(ctx context.Context, username string, limit int) ([]model.ConversionEvent, error) {
	if s.events == nil {
		return nil, ErrStoreUnavailable
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	events, err := s.events.ListByUsername(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if events == nil {
		events = []model.ConversionEvent{}
	}
	return events, nil
}
