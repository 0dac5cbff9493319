package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink2deck/internal/model"
	"ink2deck/internal/navigation"
)

// backendFixture scales expiry tests: unit is one tick of the backend's
// clock and advance moves that clock forward.
type backendFixture struct {
	backend Backend
	unit    time.Duration
	advance func(time.Duration)
}

func newMemoryFixture(t *testing.T) backendFixture {
	t.Helper()
	return backendFixture{
		backend: NewMemoryBackend(),
		unit:    5 * time.Millisecond,
		advance: time.Sleep,
	}
}

func newRedisFixture(t *testing.T) backendFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return backendFixture{
		backend: NewRedisBackend(client),
		unit:    time.Second,
		advance: mr.FastForward,
	}
}

func fixtures(t *testing.T) map[string]backendFixture {
	return map[string]backendFixture{
		"memory": newMemoryFixture(t),
		"redis":  newRedisFixture(t),
	}
}

func TestBackend_GetSetDelete(t *testing.T) {
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, fx.backend.Ping(ctx))

			_, ok, err := fx.backend.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, fx.backend.Set(ctx, "k", []byte("v1"), time.Minute))
			got, ok, err := fx.backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, fx.backend.Delete(ctx, "k"))
			_, ok, err = fx.backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBackend_Expiry(t *testing.T) {
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, fx.backend.Set(ctx, "k", []byte("v"), 60*fx.unit))
			require.NoError(t, fx.backend.Set(ctx, "forever", []byte("v"), 0))

			fx.advance(30 * fx.unit)
			_, ok, err := fx.backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)

			fx.advance(40 * fx.unit)
			_, ok, err = fx.backend.Get(ctx, "forever")
			require.NoError(t, err)
			assert.True(t, ok)
			_, ok, err = fx.backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	v := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", v, 0))
	v[0] = 'z'

	got, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestSessionStore(t *testing.T) {
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := NewSessionStore(fx.backend, 60*fx.unit)

			sess, err := store.Create(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, sess.ID)
			assert.Equal(t, navigation.ScreenLanding, sess.Screen)

			require.NoError(t, sess.GetStarted())
			require.NoError(t, sess.LoginSucceeded("alice"))
			require.NoError(t, store.Save(ctx, sess))

			got, ok, err := store.Get(ctx, sess.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sess, got)

			_, ok, err = store.Get(ctx, "")
			require.NoError(t, err)
			assert.False(t, ok)

			fx.advance(70 * fx.unit)
			_, ok, err = store.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_DistinctIDs(t *testing.T) {
	store := NewSessionStore(NewMemoryBackend(), 0)
	a, err := store.Create(context.Background())
	require.NoError(t, err)
	b, err := store.Create(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestArtifactStore(t *testing.T) {
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := NewArtifactStore(fx.backend, 30*time.Minute)

			in := &model.Artifacts{
				Text:      "Hello world",
				Strategy:  "tesseract",
				Deck:      []byte{0x50, 0x4b, 0x03, 0x04},
				Document:  []byte("%PDF-1.3"),
				CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			}
			require.NoError(t, store.Put(ctx, "s1", in))

			got, ok, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, in.Text, got.Text)
			assert.Equal(t, in.Deck, got.Deck)
			assert.Equal(t, in.Document, got.Document)
			assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

			_, ok, err = store.Get(ctx, "s2")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx, "s1"))
			_, ok, err = store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
