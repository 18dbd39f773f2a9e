package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/metrics"
	"inventory-api/internal/repository"
	"inventory-api/internal/repository/memory"
	"inventory-api/internal/repository/relational"
	"inventory-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t        *testing.T
	router   *gin.Engine
	clock    *fakeClock
	sessions *memory.SessionRepository
	metrics  *metrics.Metrics
}

type harnessOptions struct {
	items   repository.ItemRepository
	exports service.ExportService
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newHarness serves the full stack over a throwaway sqlite database.
func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	db, err := relational.Open("sqlite", filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, relational.Migrate(context.Background(), db, goose.NopLogger()))

	items := opts.items
	if items == nil {
		items = relational.NewItemRepository(db)
	}

	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	sessionRepo := memory.NewSessionRepository()
	sessions, err := service.NewSessionService(sessionRepo, service.SessionOptions{
		Secret: []byte("test-secret"),
		Now:    clock.Now,
	})
	require.NoError(t, err)

	m := metrics.New()
	handler := NewHandler(
		newTestUserService(relational.NewUserRepository(db)),
		sessions,
		Config{Exports: opts.exports, Metrics: m, Logger: quietLogger()},
		Backend{Name: "relational", Prefix: "/inventory", Items: service.NewInventoryService(items)},
	)

	router := gin.New()
	handler.RegisterRoutes(router)

	return &harness{t: t, router: router, clock: clock, sessions: sessionRepo, metrics: m}
}

func newTestUserService(users repository.UserRepository) service.UserService {
	return service.NewUserServiceWithCost(users, bcrypt.MinCost)
}

func (h *harness) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultCookieName {
			found = c
		}
	}
	return found
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signUp registers and logs in a user, returning the session cookie.
func (h *harness) signUp(username string) *http.Cookie {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/register", map[string]string{
		"username": username,
		"password": "password-" + username,
		"email":    username + "@example.com",
	}, nil)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": "password-" + username,
	}, nil)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(h.t, cookie)
	return cookie
}

func (h *harness) createItem(cookie *http.Cookie, body map[string]any) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/inventory", body, cookie)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[map[string]any](h.t, rec)
	id, ok := resp["item_id"].(string)
	require.True(h.t, ok, "item_id should be a string: %v", resp)
	return id
}
