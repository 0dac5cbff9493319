package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink2deck/internal/model"
)

type memoryEventStore struct {
	events []model.ConversionEvent
	err    error
}

func (s *memoryEventStore) Create(_ context.Context, event *model.ConversionEvent) error {
	if s.err != nil {
		return s.err
	}
	event.ID = uint(len(s.events) + 1)
	s.events = append(s.events, *event)
	return nil
}

func TestHandle_PersistsEvent(t *testing.T) {
	store := &memoryEventStore{}
	w := NewConversionPersistWorker(nil, store, "q", zerolog.Nop())

	body := []byte(`{"id":99,"username":"alice","strategy":"vision","text_length":42,"slide_count":4,"created_at":"2024-05-01T10:00:00Z"}`)
	require.NoError(t, w.handle(context.Background(), body))

	require.Len(t, store.events, 1)
	got := store.events[0]
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "vision", got.Strategy)
	assert.Equal(t, 42, got.TextLength)
	assert.Equal(t, 4, got.SlideCount)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestHandle_RejectsGarbage(t *testing.T) {
	store := &memoryEventStore{}
	w := NewConversionPersistWorker(nil, store, "q", zerolog.Nop())

	assert.Error(t, w.handle(context.Background(), []byte("not json")))
	assert.Empty(t, store.events)
}

func TestHandle_StoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	w := NewConversionPersistWorker(nil, &memoryEventStore{err: storeErr}, "q", zerolog.Nop())

	err := w.handle(context.Background(), []byte(`{"username":"bob"}`))
	assert.ErrorIs(t, err, storeErr)
}
