package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/auth"
	"github.com/jason-s-yu/lastcard/internal/database"
	"github.com/jason-s-yu/lastcard/internal/game"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// memoryUsers stands in for the Postgres user store. Passwords are kept in plain text.
type memoryUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[uuid.UUID]models.User), byEmail: make(map[string]uuid.UUID)}
}

func (m *memoryUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Email != "" {
		if _, taken := m.byEmail[u.Email]; taken {
			return database.ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.Elo = models.DefaultElo
	m.byID[u.ID] = *u
	if u.Email != "" {
		m.byEmail[u.Email] = u.ID
	}
	return nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) AuthenticateUser(_ context.Context, email, password string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok || m.byID[id].Password != password {
		return nil, database.ErrInvalidCredentials
	}
	u := m.byID[id]
	return &u, nil
}

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions, err := auth.NewSessions(0)
	require.NoError(t, err)
	hub := game.NewHub()
	svc := game.NewService(game.NewMemoryStore(), logger)
	svc.Notifier = hub

	gs := NewGameServer(svc, hub, newMemoryUsers(), sessions, logger)
	srv := httptest.NewServer(NewRouter(gs, []string{"http://*"}))
	t.Cleanup(srv.Close)
	return gs, srv
}

// client is a browser-like caller that keeps its cookies.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) cookie() string {
	u, err := url.Parse(c.base)
	require.NoError(c.t, err)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == auth.CookieName {
			return ck.Name + "=" + ck.Value
		}
	}
	return ""
}
