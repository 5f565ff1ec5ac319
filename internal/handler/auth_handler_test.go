package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-registration-api/internal/models"
	"github.com/noah-isme/student-registration-api/internal/service"
)

type adminRepoStub struct {
	admin *models.Admin
}

func (s *adminRepoStub) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if s.admin == nil || s.admin.Username != username {
		return nil, sql.ErrNoRows
	}
	return s.admin, nil
}

func (s *adminRepoStub) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.admin != nil && s.admin.Username == username, nil
}

func (s *adminRepoStub) Create(ctx context.Context, admin *models.Admin) error {
	s.admin = admin
	return nil
}

func testAuthService(repo *adminRepoStub) *service.AuthService {
	return service.NewAuthService(repo, nil, nil, service.AuthConfig{
		Secret:     "test-secret",
		Issuer:     "student-registration-api",
		Audience:   "student-registration-clients",
		Expiration: time.Hour,
	})
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testAuthService(&adminRepoStub{}))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/auth/register", service.RegisterAdminRequest{Username: "admin", Password: "secret123"})

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Admin `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "admin", envelope.Data.Username)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testAuthService(&adminRepoStub{}))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	handler := NewAuthHandler(testAuthService(&adminRepoStub{admin: &models.Admin{Username: "admin", PasswordHash: string(hash)}}))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: "admin", Password: "secret123"})

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testAuthService(&adminRepoStub{}))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: "ghost", Password: "whatever"})

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid username or password")
}
