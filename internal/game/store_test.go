package game

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := &models.GameSession{ID: uuid.New(), Passcode: "ABCDEF", Status: models.SessionActive, State: "{}"}
	require.NoError(t, store.CreateSession(ctx, sess))

	loaded, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	loaded.State = "changed"
	loaded.Version = 1
	require.NoError(t, store.UpdateSession(ctx, loaded, 0))

	stale := *sess
	stale.Version = 1
	assert.ErrorIs(t, store.UpdateSession(ctx, &stale, 0), models.ErrVersionConflict)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.State)
	assert.Equal(t, 1, got.Version)

	got.State = "local edit"
	again, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", again.State, "returned sessions are copies")
}

func TestMemoryStorePasscodes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := &models.GameSession{ID: uuid.New(), Passcode: "ABCDEF", Status: models.SessionWaiting}
	require.NoError(t, store.CreateSession(ctx, first))

	dup := &models.GameSession{ID: uuid.New(), Passcode: "ABCDEF", Status: models.SessionWaiting}
	assert.ErrorIs(t, store.CreateSession(ctx, dup), models.ErrDuplicatePasscode)

	got, err := store.GetSessionByPasscode(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	// finished games release their passcode
	first.Status = models.SessionFinished
	require.NoError(t, store.UpdateSession(ctx, first, 0))
	require.NoError(t, store.CreateSession(ctx, dup))

	_, err = store.GetSessionByPasscode(ctx, "QQQQQQ")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = store.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	store.DeleteSession(dup.ID)
	_, err = store.GetSession(ctx, dup.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}
