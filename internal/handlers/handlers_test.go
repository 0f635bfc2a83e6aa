package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository/repotest"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/routes"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubLookup struct {
	addr *services.PostalAddress
	err  error
}

func (s *stubLookup) Lookup(context.Context, string) (*services.PostalAddress, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.addr, nil
}

type testEnv struct {
	app    *fiber.App
	cfg    *config.Config
	store  *repotest.Store
	auth   *services.AuthService
	lookup *stubLookup
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		SessionSecret: "test-secret",
		SessionExpiry: time.Hour,
		CookieName:    "session_token",
		BcryptCost:    bcrypt.MinCost,
		AppEnv:        "test",
	}
	store := repotest.NewStore()
	auth := services.NewAuthService(store.Users, store.Sessions, cfg)
	lookup := &stubLookup{addr: &services.PostalAddress{Zipcode: "01001000", City: "São Paulo", State: "SP"}}

	registration := services.NewRegistrationService(auth, lookup)
	admin := services.NewAdminService(store.Users, auth)
	user := services.NewUserService(store.Users)

	app := fiber.New()
	routes.Setup(app, cfg, auth,
		handlers.NewAuthHandler(cfg, auth, registration),
		handlers.NewAdminHandler(admin),
		handlers.NewPostalHandler(lookup),
		handlers.NewViewHandler(user, admin),
		handlers.NewHealthHandler(nil),
	)
	return &testEnv{app: app, cfg: cfg, store: store, auth: auth, lookup: lookup}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == e.cfg.CookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", e.cfg.CookieName)
	return nil
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return e.sessionCookie(t, resp)
}

// seedAdmin provisions the administrator the same way the seed command does.
func (e *testEnv) seedAdmin(t *testing.T) *services.Session {
	t.Helper()
	issued, err := e.auth.SignUpEmail(context.Background(), services.SignUpInput{
		Name: "Administrador", Email: "admin@exemplo.com", Password: "Admin123@",
		Zipcode: "00000000", City: "Belo Horizonte", State: "MG",
	}, services.ClientMeta{})
	require.NoError(t, err)
	require.NoError(t, e.store.Users.Promote(context.Background(), issued.Session.UserID))
	return issued.Session
}

func (e *testEnv) registerUser(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register", registerBody(email), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return e.sessionCookie(t, resp)
}

func registerBody(email string) map[string]string {
	return map[string]string{
		"name":                  "Ana",
		"email":                 email,
		"password":              "Abc123@!",
		"password_confirmation": "Abc123@!",
		"zipcode":               "01001-000",
		"city":                  "São Paulo",
		"state":                 "SP",
	}
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
