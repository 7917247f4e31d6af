package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopkit/auth-service/auth"
	"github.com/shopkit/auth-service/internal/config"
	"github.com/shopkit/auth-service/server"
	"github.com/shopkit/auth-service/sessions/repofakes"
	"github.com/shopkit/auth-service/users"
	"github.com/shopkit/auth-service/users/repofake"
)

const (
	testSecret    = "test-signing-secret"
	testPassword  = "password123"
	testUserID    = "user-1"
	testUserEmail = "a@x.com"
	testAdminPass = "admin-secret"
)

type testFixture struct {
	userRepo     *repofake.FakeUserRepo
	sessionStore *repofakes.FakeSessionStore
	server       *server.Server
}

func setupTestFixture(t *testing.T, mutate ...func(*config.Config)) *testFixture {
	t.Helper()

	cfg := &config.Config{
		Port:          ":0",
		AppName:       "test",
		Env:           "DEV",
		TokenSecret:   testSecret,
		AdminPassword: testAdminPass,
		AdminGateMode: "shared-secret",
		StoreTimeout:  time.Second,
	}
	for _, m := range mutate {
		m(cfg)
	}

	ur := repofake.NewFakeUserRepo()
	ss := repofakes.NewFakeSessionStore()

	srv, err := server.New(cfg, ur, ss)
	require.NoError(t, err)

	return &testFixture{userRepo: ur, sessionStore: ss, server: srv}
}

func (f *testFixture) createTestUser(t *testing.T, role users.Role) {
	t.Helper()

	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Upsert(context.Background(), &users.User{
		ID:           testUserID,
		Email:        testUserEmail,
		Role:         role,
		PasswordHash: hash,
	}))
}

func (f *testFixture) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)
	return w
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"password123"}`))
	w := f.do(r)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string         `json:"token"`
		User  auth.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.Equal(t, testUserID, body.User.UserID)
	require.Equal(t, users.RoleCustomer, body.User.Role)

	cookies := w.Result().Cookies()
	session := cookieByName(t, cookies, auth.CookieSession)
	require.True(t, session.HttpOnly)
	require.NotEmpty(t, session.Value)

	email := cookieByName(t, cookies, auth.CookieEmail)
	require.False(t, email.HttpOnly)

	tokenCookie := cookieByName(t, cookies, auth.CookieAuthToken)
	require.True(t, tokenCookie.HttpOnly)
	require.Equal(t, body.Token, tokenCookie.Value)

	// The new session is persisted.
	ok, err := f.sessionStore.IsValid(context.Background(), testUserID, session.Value)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"nope"}`))
	w := f.do(r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, w.Result().Cookies())
}

func TestLoginUnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"nobody@x.com","password":"password123"}`))
	require.Equal(t, http.StatusUnauthorized, f.do(r).Code)
}

func TestLoginMalformedBody(t *testing.T) {
	f := setupTestFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
	require.Equal(t, http.StatusBadRequest, f.do(r).Code)

	r = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com"}`))
	require.Equal(t, http.StatusBadRequest, f.do(r).Code)
}

func TestLoginStoreFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.userRepo.FailWith = context.DeadlineExceeded

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"password123"}`))
	require.Equal(t, http.StatusInternalServerError, f.do(r).Code)
}

func TestValidateSessionAuthenticated(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)
	require.NoError(t, f.sessionStore.Create(context.Background(), testUserID, "S1"))

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieSession, Value: "S1"})
	r.AddCookie(&http.Cookie{Name: auth.CookieEmail, Value: "a@x.com"})
	w := f.do(r)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User     auth.Principal `json:"user"`
		Fallback bool           `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, testUserID, body.User.UserID)
	require.False(t, body.Fallback)

	// Cookies are refreshed with a fresh max-age.
	refreshed := cookieByName(t, w.Result().Cookies(), auth.CookieSession)
	require.Equal(t, "S1", refreshed.Value)
	require.Positive(t, refreshed.MaxAge)
}

func TestValidateSessionFallbackIsDistinguishable(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)
	require.NoError(t, f.sessionStore.Create(context.Background(), testUserID, "S1"))

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieSession, Value: "S2"})
	r.AddCookie(&http.Cookie{Name: auth.CookieEmail, Value: "a@x.com"})
	w := f.do(r)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User     auth.Principal `json:"user"`
		Fallback bool           `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Fallback)

	// Self-heal appends the unknown session.
	require.Eventually(t, func() bool {
		ok, err := f.sessionStore.IsValid(context.Background(), testUserID, "S2")
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)
}

func TestValidateSessionStrictMode(t *testing.T) {
	f := setupTestFixture(t, func(cfg *config.Config) { cfg.StrictSessions = true })
	f.createTestUser(t, users.RoleCustomer)

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieSession, Value: "S2"})
	r.AddCookie(&http.Cookie{Name: auth.CookieEmail, Value: "a@x.com"})
	require.Equal(t, http.StatusUnauthorized, f.do(r).Code)
}

func TestValidateSessionNoCredentials(t *testing.T) {
	f := setupTestFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	require.Equal(t, http.StatusUnauthorized, f.do(r).Code)
}

func TestValidateSessionBearerOnly(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"password123"}`))
	loginResp := f.do(login)
	require.Equal(t, http.StatusOK, loginResp.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(loginResp.Body.Bytes(), &body))

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	r.Header.Set("Authorization", "Bearer "+body.Token)
	require.Equal(t, http.StatusOK, f.do(r).Code)
}

func TestValidateSessionStoreFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.userRepo.FailWith = context.DeadlineExceeded

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-session", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieSession, Value: "S1"})
	r.AddCookie(&http.Cookie{Name: auth.CookieEmail, Value: "a@x.com"})
	require.Equal(t, http.StatusInternalServerError, f.do(r).Code)
}

func TestLogoutInvalidatesSessionAndClearsCookies(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, users.RoleCustomer)
	require.NoError(t, f.sessionStore.Create(context.Background(), testUserID, "S1"))

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieSession, Value: "S1"})
	r.AddCookie(&http.Cookie{Name: auth.CookieEmail, Value: "a@x.com"})
	w := f.do(r)

	require.Equal(t, http.StatusOK, w.Code)

	ok, err := f.sessionStore.IsValid(context.Background(), testUserID, "S1")
	require.NoError(t, err)
	require.False(t, ok)

	for _, name := range []string{auth.CookieSession, auth.CookieEmail, auth.CookieAuthToken, auth.CookieAuthStatus} {
		c := cookieByName(t, w.Result().Cookies(), name)
		require.Negative(t, c.MaxAge, "cookie %s should be expired", name)
	}
}

func TestLogoutWithoutSessionStillClears(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies())
}
