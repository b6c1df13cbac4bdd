package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type handlerFixture struct {
	router  chi.Router
	repo    *mockRepo
	issuer  *TokenIssuer
	service *Service
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	repo := newMockRepo()
	repo.addRole(Role{ID: DefaultRoleID, Name: "customer", CanPostLogin: true, CanGetMyUser: true})

	issuer := NewTokenIssuer("test-secret", time.Hour)
	limiter := NewLoginLimiter(5 * time.Second)
	service := NewService(testLogger(), repo, issuer, limiter, bcrypt.MinCost)
	guard := NewGuard(testLogger(), repo, issuer, &mockKeys{secrets: map[string]*User{}})
	handler := NewHandler(testLogger(), service, guard)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return &handlerFixture{router: router, repo: repo, issuer: issuer, service: service}
}

func (f *handlerFixture) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodPost, "/auth/register", `{"name":"Jane","email":"jane@example.com","password":"hunter22222"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Data struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Data.ID)
	assert.Equal(t, "jane@example.com", resp.Data.Email)

	// Re-registering the same email conflicts.
	rr = f.do(http.MethodPost, "/auth/register", `{"name":"Jane","email":"jane@example.com","password":"hunter22222"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodPost, "/auth/register", `{"name":"Jane","email":"not-an-email","password":"hunter22222"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/auth/register", `{"name":"Jane","email":"jane@example.com","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginEndpointReturnsToken(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.addUser(User{Email: "jane@example.com", RoleID: DefaultRoleID, PasswordHash: mustHash(t, "hunter22222")})

	rr := f.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"hunter22222"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	claims, err := f.issuer.Verify(resp.Data)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestLoginEndpointRateLimited(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.addUser(User{Email: "jane@example.com", RoleID: DefaultRoleID, PasswordHash: mustHash(t, "hunter22222")})

	body := `{"email":"jane@example.com","password":"hunter22222"}`
	rr := f.do(http.MethodPost, "/auth/login", body, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

// Full session lifecycle: login, use the token, change the password, and
// watch the old token stop working while a fresh login succeeds.
func TestPasswordChangeInvalidatesOutstandingTokens(t *testing.T) {
	f := newHandlerFixture(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := t0
	f.issuer.now = func() time.Time { return clock }
	f.service.now = func() time.Time { return clock.Add(2 * time.Second) }
	f.service.limiter.now = func() time.Time { return clock }

	f.repo.addUser(User{
		Email:             "jane@example.com",
		RoleID:            DefaultRoleID,
		PasswordHash:      mustHash(t, "hunter22222"),
		PasswordUpdatedAt: t0.Add(-time.Hour),
	})

	rr := f.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"hunter22222"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	token := resp.Data
	bearer := map[string]string{"Authorization": "Bearer " + token}

	rr = f.do(http.MethodPut, "/auth/password", `{"password":"newpassword1"}`, bearer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "require_new_login")

	// The pre-change token is now superseded.
	rr = f.do(http.MethodPost, "/auth/logout", "", bearer)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "token superseded")

	// A fresh login with the new password works once the cooldown passes.
	clock = t0.Add(10 * time.Second)
	rr = f.do(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"newpassword1"}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogoutEndpointInvalidatesTokens(t *testing.T) {
	f := newHandlerFixture(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.issuer.now = func() time.Time { return t0 }
	f.service.now = func() time.Time { return t0.Add(2 * time.Second) }

	user := f.repo.addUser(User{
		Email:             "jane@example.com",
		RoleID:            DefaultRoleID,
		PasswordHash:      mustHash(t, "hunter22222"),
		PasswordUpdatedAt: t0.Add(-time.Hour),
	})
	token, err := f.issuer.Issue(*user)
	require.NoError(t, err)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	rr := f.do(http.MethodPost, "/auth/logout", "", bearer)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/auth/logout", "", bearer)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "token superseded")
}
