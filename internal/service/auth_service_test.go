package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-registration-api/internal/models"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
)

type mockAdminRepo struct {
	admin     *models.Admin
	exists    bool
	existsErr error
	created   *models.Admin
	createErr error
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.admin == nil || m.admin.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.admin, nil
}

func (m *mockAdminRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = admin
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Secret:     "test-secret",
		Issuer:     "student-registration-api",
		Audience:   "student-registration-clients",
		Expiration: time.Hour,
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	admin, err := svc.Register(context.Background(), RegisterAdminRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "admin", admin.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret123")))
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	svc := NewAuthService(&mockAdminRepo{exists: true}, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterAdminRequest{Username: "admin", Password: "secret123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "admin already exists", appErr.Message)
}

func TestAuthServiceRegisterShortPassword(t *testing.T) {
	svc := NewAuthService(&mockAdminRepo{}, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterAdminRequest{Username: "admin", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	repo := &mockAdminRepo{admin: &models.Admin{ID: "uuid-1", Username: "admin", PasswordHash: hashOf(t, "secret123")}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.AdminRole, claims.Role)
	assert.Equal(t, "student-registration-api", claims.Issuer)
	assert.Contains(t, claims.Audience, "student-registration-clients")
}

func TestAuthServiceLoginFailuresIndistinguishable(t *testing.T) {
	repo := &mockAdminRepo{admin: &models.Admin{Username: "admin", PasswordHash: hashOf(t, "secret123")}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, unknownUser := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret123"})
	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "nope"})

	require.Error(t, unknownUser)
	require.Error(t, wrongPassword)
	assert.Equal(t, appErrors.FromError(unknownUser).Code, appErrors.FromError(wrongPassword).Code)
	assert.Equal(t, appErrors.FromError(unknownUser).Message, appErrors.FromError(wrongPassword).Message)
	assert.Equal(t, "invalid username or password", appErrors.FromError(wrongPassword).Message)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	repo := &mockAdminRepo{admin: &models.Admin{Username: "admin", PasswordHash: hashOf(t, "secret123")}}
	issuer := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := issuer.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)

	other := testAuthConfig()
	other.Secret = "different"
	verifier := NewAuthService(repo, nil, nil, other)
	_, err = verifier.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenForeignIssuerAudience(t *testing.T) {
	repo := &mockAdminRepo{admin: &models.Admin{Username: "admin", PasswordHash: hashOf(t, "secret123")}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	for _, cfg := range []AuthConfig{
		{Secret: "test-secret", Issuer: "other-service", Audience: "student-registration-clients", Expiration: time.Hour},
		{Secret: "test-secret", Issuer: "student-registration-api", Audience: "other-clients", Expiration: time.Hour},
	} {
		foreign := NewAuthService(repo, nil, nil, cfg)
		res, err := foreign.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(res.Token)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	}
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	repo := &mockAdminRepo{admin: &models.Admin{Username: "admin", PasswordHash: hashOf(t, "secret123")}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
