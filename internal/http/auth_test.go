package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterResponseShape(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	rec := h.do(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "secret-pass",
		"email":    "Alice@Example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[struct {
		Message string       `json:"message"`
		User    UserResponse `json:"user"`
	}](t, rec)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Positive(t, resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterRejectsBadInput(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	cases := []struct {
		name string
		body any
		want string
	}{
		{"missing email", map[string]string{"username": "a", "password": "p"}, "Missing required fields"},
		{"blank username", map[string]string{"username": "  ", "password": "p", "email": "a@example.com"}, "Missing required fields"},
		{"bad email", map[string]string{"username": "a", "password": "p", "email": "nope"}, "Invalid email address"},
		{"not json", "{", "Missing required fields"},
		{"password too long", map[string]string{"username": "a", "password": strings.Repeat("p", 80), "email": "a@example.com"}, "Password must be at most 72 bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, "/register", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tc.want+`"}`, rec.Body.String())
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.signUp("alice")

	rec := h.do(http.MethodPost, "/register", map[string]string{
		"username": "alice", "password": "x", "email": "other@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Username already exists"}`, rec.Body.String())

	rec = h.do(http.MethodPost, "/register", map[string]string{
		"username": "bob", "password": "x", "email": "ALICE@example.COM",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email already exists"}`, rec.Body.String())
}

func TestPaddedUsernameCanLogIn(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	rec := h.do(http.MethodPost, "/register", map[string]string{
		"username": " bob ", "password": "secret-pass", "email": "bob@example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "bob", decode[struct {
		User UserResponse `json:"user"`
	}](t, rec).User.Username)

	for _, name := range []string{" bob ", "bob"} {
		rec = h.do(http.MethodPost, "/login", map[string]string{"username": name, "password": "secret-pass"}, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "login as %q", name)
		assert.NotNil(t, sessionCookie(rec), "login as %q", name)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.signUp("alice")

	wrong := h.do(http.MethodPost, "/login", map[string]string{"username": "alice", "password": "nope"}, nil)
	unknown := h.do(http.MethodPost, "/login", map[string]string{"username": "mallory", "password": "nope"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrong.Body.String())
	assert.Nil(t, sessionCookie(wrong))
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	rec := h.do(http.MethodPost, "/login", map[string]string{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing credentials"}`, rec.Body.String())
}

func TestSessionCookieAttributes(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	cookie := h.signUp("alice")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((30 * time.Minute).Seconds()), cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestLoginReplacesExistingSession(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	first := h.signUp("alice")

	rec := h.do(http.MethodPost, "/login", map[string]string{"username": "alice", "password": "password-alice"}, first)
	require.Equal(t, http.StatusOK, rec.Code)
	second := sessionCookie(rec)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/inventory", nil, first).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/inventory", nil, second).Code)
	assert.Equal(t, 1, h.sessions.Len())
}

func TestLogoutInvalidatesCookie(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	cookie := h.signUp("alice")

	rec := h.do(http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	rec = h.do(http.MethodGet, "/inventory", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/logout", nil, cookie).Code)
}

func TestIdleSessionExpires(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	cookie := h.signUp("alice")

	h.clock.Advance(20 * time.Minute)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/inventory", nil, cookie).Code)

	// the request above slid the deadline
	h.clock.Advance(20 * time.Minute)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/inventory", nil, cookie).Code)

	h.clock.Advance(30 * time.Minute)
	rec := h.do(http.MethodGet, "/inventory", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	rec := h.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.signUp("alice")
	h.do(http.MethodPost, "/login", map[string]string{"username": "alice", "password": "bad"}, nil)

	rec := h.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `inventory_login_attempts_total{result="success"} 1`)
	assert.Contains(t, body, `inventory_login_attempts_total{result="rejected"} 1`)
	assert.Contains(t, body, `inventory_registrations_total{result="created"} 1`)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := newRouterWithOrigins(t, "https://app.example.com")

	req := newRequest(http.MethodOptions, "/login", "https://app.example.com")
	rec := serve(router, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = newRequest(http.MethodGet, "/health", "https://evil.example.com")
	rec = serve(router, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
