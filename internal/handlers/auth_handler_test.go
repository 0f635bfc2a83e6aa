package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesUserAndSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", registerBody("a@b.com"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := env.sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	var body dto.AuthResponse
	decode(t, resp, &body)
	assert.Equal(t, services.PathDashboard, body.Redirect)
	assert.Equal(t, "a@b.com", body.User.Email)
	assert.Equal(t, models.RoleUser, body.User.Role)

	n, _ := env.store.Users.Count(context.Background())
	assert.Equal(t, int64(1), n)
	user, err := env.store.Users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, "01001000", user.Zipcode)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "a@b.com")

	resp := env.do(t, http.MethodPost, "/api/auth/register", registerBody("A@B.com"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.True(t, body.Error)
	assert.Equal(t, services.MsgEmailTaken, body.Message)

	n, _ := env.store.Users.Count(context.Background())
	assert.Equal(t, int64(1), n)
}

func TestRegister_ValidationErrorsListFields(t *testing.T) {
	env := newTestEnv(t)
	req := registerBody("not-an-email")
	req["password"] = "short"

	resp := env.do(t, http.MethodPost, "/api/auth/register", req, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ValidationErrorResponse
	decode(t, resp, &body)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")

	n, _ := env.store.Users.Count(context.Background())
	assert.Zero(t, n)
}

func TestRegister_UnknownPostalCode(t *testing.T) {
	env := newTestEnv(t)
	env.lookup.err = services.ErrPostalCodeNotFound

	resp := env.do(t, http.MethodPost, "/api/auth/register", registerBody("a@b.com"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ValidationErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, services.ErrPostalCodeNotFound.Error(), body.Fields["zipcode"])
}

func TestRegister_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "just a string", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_RedirectDependsOnRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	env.registerUser(t, "user@example.com")

	resp := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@exemplo.com", "password": "Admin123@",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.AuthResponse
	decode(t, resp, &body)
	assert.Equal(t, services.PathAdmin, body.Redirect)

	resp = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "user@example.com", "password": "Abc123@!",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, services.PathDashboard, body.Redirect)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com")

	resp := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "user@example.com", "password": "Wrong123@",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, services.MsgInvalidCredentials, body.Message)
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "user@example.com")

	resp := env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess dto.SessionResponse
	decode(t, resp, &sess)
	assert.Equal(t, "user@example.com", sess.User.Email)
	assert.Equal(t, services.PathDashboard, sess.Landing)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := env.sessionCookie(t, resp)
	assert.Empty(t, cleared.Value)

	// The old token still verifies but its session row is revoked.
	resp = env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_AcceptsBearerHeader(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "user@example.com")

	req := newRequest(http.MethodGet, "/api/auth/session")
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_RejectsMissingAndForgedTokens(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/auth/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/auth/session", nil, &http.Cookie{Name: env.cfg.CookieName, Value: "forged.token.value"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
