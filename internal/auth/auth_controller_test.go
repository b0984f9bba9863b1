package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DhavalSuthar-24/huddle/config"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/DhavalSuthar-24/huddle/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authEnvelope struct {
	Status string       `json:"status"`
	Data   AuthResponse `json:"data"`
}

type testServer struct {
	router *gin.Engine
	repo   AuthRepository
	users  user.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	db := storetest.Open(t, &user.User{}, &RefreshToken{})
	cfg := config.Default()
	users := user.NewUserRepository(db, cfg.Participation.MaxAttempts)
	repo := NewAuthRepository(db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg.JWT.AccessTokenSecret, db))
	RegisterAuthRoutes(api, authenticated, NewAuthController(repo, users, cfg, zap.NewNop()))

	return &testServer{router: r, repo: repo, users: users}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) AuthResponse {
	t.Helper()
	var env authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, "success", env.Status)
	return env.Data
}

func (s *testServer) register(t *testing.T, email string) AuthResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName:         "Jane Runner",
		Email:            email,
		Password:         "password123",
		SportPreferences: []string{"football", "tennis"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeAuth(t, w)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	reg := s.register(t, "Jane@Example.com")
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	require.NotNil(t, reg.User)
	assert.Equal(t, "jane@example.com", reg.User.Email)
	assert.True(t, reg.User.NotificationsEnabled)
	assert.Equal(t, user.RoleMember, reg.User.Role)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName: "Other", Email: "jane@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "JANE@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, reg.User.ID, decodeAuth(t, w).User.ID)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{FullName: "x", Email: "bad", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName: "x", Email: "x@example.com", Password: "password123", SportPreferences: []string{"quidditch"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshToken_RotatesAndRejectsReuse(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "rotate@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/refresh-token", "", RefreshTokenRequest{RefreshToken: reg.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	next := decodeAuth(t, w)
	assert.NotEqual(t, reg.RefreshToken, next.RefreshToken)

	// the old token is spent
	w = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", RefreshTokenRequest{RefreshToken: reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// an access token is not a refresh token
	w = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", RefreshTokenRequest{RefreshToken: next.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := s.repo.GetRefreshToken(context.Background(), next.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "logout@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/logout", "", LogoutRequest{RefreshToken: reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout needs an access token")

	w = s.do(t, http.MethodPost, "/api/auth/logout", reg.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", reg.AccessToken, LogoutRequest{RefreshToken: reg.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", RefreshTokenRequest{RefreshToken: reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "change@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/change-password", reg.AccessToken, ChangePasswordRequest{
		OldPassword: "not-it", NewPassword: "newpassword1", PasswordConfirm: "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/change-password", reg.AccessToken, ChangePasswordRequest{
		OldPassword: "password123", NewPassword: "newpassword1", PasswordConfirm: "mismatch",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/change-password", reg.AccessToken, ChangePasswordRequest{
		OldPassword: "password123", NewPassword: "newpassword1", PasswordConfirm: "newpassword1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", RefreshTokenRequest{RefreshToken: reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "change@example.com", Password: "newpassword1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
