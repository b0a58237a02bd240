package database

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to DATABASE_URL and applies the schema, or skips.
func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := ConnectDB(context.Background(), url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	require.NoError(t, EnsureSchema(context.Background(), pool))
	t.Cleanup(pool.Close)
	return pool
}

func newSession(status string) *models.GameSession {
	return &models.GameSession{
		ID:       uuid.New(),
		Passcode: uuid.NewString()[:6],
		GameType: models.GameTypeOnline,
		Status:   status,
		State:    `{"status":"active"}`,
	}
}

func TestSessionStoreVersioning(t *testing.T) {
	pool := testDB(t)
	ctx := context.Background()
	store := NewSessionStore(pool)

	sess := newSession(models.SessionWaiting)
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.False(t, sess.CreatedAt.IsZero())

	dup := newSession(models.SessionWaiting)
	dup.Passcode = sess.Passcode
	assert.ErrorIs(t, store.CreateSession(ctx, dup), models.ErrDuplicatePasscode)

	got, err := store.GetSessionByPasscode(ctx, sess.Passcode)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	got.Status = models.SessionActive
	got.Version = 1
	require.NoError(t, store.UpdateSession(ctx, got, 0))
	assert.ErrorIs(t, store.UpdateSession(ctx, got, 0), models.ErrVersionConflict)

	missing := newSession(models.SessionActive)
	assert.ErrorIs(t, store.UpdateSession(ctx, missing, 0), models.ErrSessionNotFound)
	_, err = store.GetSession(ctx, missing.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	changed, err := store.MarkAbandoned(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.MarkAbandoned(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	final, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, final.Status)
	assert.Equal(t, 2, final.Version)
}

func TestUsersAndRatings(t *testing.T) {
	pool := testDB(t)
	ctx := context.Background()
	users := NewUserStore(pool)

	email := uuid.NewString() + "@example.com"
	alice := &models.User{Email: email, Password: "pw", Username: "alice"}
	require.NoError(t, users.CreateUser(ctx, alice))
	assert.NotEqual(t, "pw", alice.Password)
	assert.ErrorIs(t, users.CreateUser(ctx, &models.User{Email: email, Password: "x", Username: "a2"}), ErrEmailTaken)

	_, err := users.AuthenticateUser(ctx, email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	got, err := users.AuthenticateUser(ctx, email, "pw")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, models.DefaultElo, got.Elo)

	bob := &models.User{Email: uuid.NewString() + "@example.com", Password: "pw", Username: "bob"}
	require.NoError(t, users.CreateUser(ctx, bob))
	guest := &models.User{Username: "Guest", IsEphemeral: true}
	require.NoError(t, users.CreateUser(ctx, guest))

	sessions := NewSessionStore(pool)
	sess := newSession(models.SessionFinished)
	require.NoError(t, sessions.CreateSession(ctx, sess))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	results := NewResultStore(pool, logger)
	require.NoError(t, results.RecordResult(ctx, sess.ID, alice.ID.String(), bob.ID.String()))
	require.NoError(t, results.RecordResult(ctx, sess.ID, alice.ID.String(), bob.ID.String()), "recorded once")

	a, err := users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	b, err := users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1516, a.Elo)
	assert.Equal(t, 1484, b.Elo)

	require.NoError(t, results.RecordResult(ctx, sess.ID, guest.ID.String(), "ai-bot"))
	g, err := users.GetUserByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultElo, g.Elo)
	assert.Empty(t, g.Email)
}

func TestInsertGameActions(t *testing.T) {
	pool := testDB(t)
	ctx := context.Background()
	sessions := NewSessionStore(pool)
	sess := newSession(models.SessionActive)
	require.NoError(t, sessions.CreateSession(ctx, sess))

	log := NewActionLog(pool)
	now := time.Now().UnixMilli()
	batch := []models.GameAction{
		{GameID: sess.ID, ActionIndex: 0, ActorID: "alice", ActionType: models.ActionCreate, Timestamp: now},
		{GameID: sess.ID, ActionIndex: 1, ActorID: "alice", ActionType: models.ActionDraw, Payload: map[string]interface{}{"count": 1}, Timestamp: now},
	}
	require.NoError(t, log.InsertGameActions(ctx, batch))
	require.NoError(t, log.InsertGameActions(ctx, batch), "redelivery is skipped")

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_actions WHERE game_id = $1`, sess.ID).Scan(&n))
	assert.Equal(t, 2, n)
}
