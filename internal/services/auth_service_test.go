package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository/repotest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuth(store *repotest.Store) *AuthService {
	return NewAuthService(store.Users, store.Sessions, &config.Config{
		SessionSecret: testSecret,
		SessionExpiry: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
}

func signUp(t *testing.T, auth *AuthService, email, password string) *IssuedSession {
	t.Helper()
	issued, err := auth.SignUpEmail(context.Background(), SignUpInput{
		Name:     "Test User",
		Email:    email,
		Password: password,
		Zipcode:  "01001000",
		City:     "São Paulo",
		State:    "SP",
	}, ClientMeta{IP: "127.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return issued
}

// seedAdmin mirrors the provisioning command: sign up, then promote.
func seedAdmin(t *testing.T, store *repotest.Store, auth *AuthService) *Session {
	t.Helper()
	issued := signUp(t, auth, "admin@exemplo.com", "Admin123@")
	require.NoError(t, store.Users.Promote(context.Background(), issued.Session.UserID))
	sess, err := auth.GetSession(context.Background(), issued.Session.ID)
	require.NoError(t, err)
	return sess
}

func TestSignUpEmail_CreatesUserAndCredential(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)

	issued := signUp(t, auth, " A@B.com ", "Abc123@!")

	user, err := store.Users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, issued.Session.UserID, user.ID)

	account, ok := store.Account(user.ID)
	require.True(t, ok)
	assert.NotEqual(t, "Abc123@!", account.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("Abc123@!")))
	assert.Equal(t, models.ProviderCredential, account.ProviderID)
}

func TestSignUpEmail_DuplicateEmail(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	signUp(t, auth, "a@b.com", "Abc123@!")

	_, err := auth.SignUpEmail(context.Background(), SignUpInput{
		Name: "Other", Email: "A@B.COM", Password: "Xyz987@!",
	}, ClientMeta{})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodeUserAlreadyExists, perr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.Status)

	n, _ := store.Users.Count(context.Background())
	assert.Equal(t, int64(1), n)
}

func TestSignUpEmail_StoreFailureIsWrapped(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	store.Err = errors.New("db down")

	_, err := auth.SignUpEmail(context.Background(), SignUpInput{Email: "a@b.com", Password: "Abc123@!"}, ClientMeta{})
	require.Error(t, err)
	var perr *ProviderError
	assert.False(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "db down")
}

func TestSignInEmail(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	signUp(t, auth, "a@b.com", "Abc123@!")

	issued, err := auth.SignInEmail(context.Background(), "A@b.com", "Abc123@!", ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", issued.Session.Email)
	assert.NotEmpty(t, issued.Token)

	for _, tc := range []struct{ email, password string }{
		{"a@b.com", "wrong"},
		{"nobody@b.com", "Abc123@!"},
	} {
		_, err := auth.SignInEmail(context.Background(), tc.email, tc.password, ClientMeta{})
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeInvalidCredentials, perr.Code)
		assert.Equal(t, "Invalid credentials", perr.Message)
	}
}

func TestIssuedTokenCarriesSessionID(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	issued := signUp(t, auth, "a@b.com", "Abc123@!")

	token, err := jwt.Parse(issued.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)

	sid, err := SessionIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, issued.Session.ID, sid)
	assert.Equal(t, models.RoleUser, claims["role"])

	_, err = SessionIDFromClaims(jwt.MapClaims{"sid": "not-a-uuid"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetSession_ReadsCurrentRole(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	issued := signUp(t, auth, "a@b.com", "Abc123@!")

	store.SetRole(issued.Session.UserID, models.RoleAdmin)

	sess, err := auth.GetSession(context.Background(), issued.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.Role)
}

func TestGetSession_RevokedAndExpired(t *testing.T) {
	store := repotest.NewStore()
	auth := newTestAuth(store)
	ctx := context.Background()

	revoked := signUp(t, auth, "a@b.com", "Abc123@!")
	require.NoError(t, auth.SignOut(ctx, revoked.Session.ID))
	_, err := auth.GetSession(ctx, revoked.Session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expiring, err := auth.SignInEmail(ctx, "a@b.com", "Abc123@!", ClientMeta{})
	require.NoError(t, err)
	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.GetSession(ctx, expiring.Session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewAuthService_ClampsBcryptCost(t *testing.T) {
	store := repotest.NewStore()
	auth := NewAuthService(store.Users, store.Sessions, &config.Config{BcryptCost: 0})
	assert.Equal(t, bcrypt.DefaultCost, auth.cost)
}
