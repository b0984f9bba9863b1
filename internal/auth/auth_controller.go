package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/huddle/config"
	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/token"
	"github.com/DhavalSuthar-24/huddle/pkg/utils"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	repo   AuthRepository
	users  user.UserRepository
	config *config.Config
	logger *zap.Logger
}

func NewAuthController(repo AuthRepository, users user.UserRepository, cfg *config.Config, logger *zap.Logger) *AuthController {
	return &AuthController{
		repo:   repo,
		users:  users,
		config: cfg,
		logger: logger,
	}
}

func (ac *AuthController) accessTTL() time.Duration {
	return time.Duration(ac.config.JWT.AccessTokenExpiryMinutes) * time.Minute
}

func (ac *AuthController) refreshTTL() time.Duration {
	return time.Duration(ac.config.JWT.RefreshTokenExpiryDays) * 24 * time.Hour
}

// issueTokens signs a fresh access/refresh pair. The refresh row is returned unsaved.
func (ac *AuthController) issueTokens(userID string) (string, *RefreshToken, error) {
	accessToken, err := token.GenerateJWT(userID, token.Access, ac.config.JWT.AccessTokenSecret, ac.accessTTL())
	if err != nil {
		return "", nil, fmt.Errorf("access token generation failed: %w", err)
	}

	refreshTokenString, err := token.GenerateJWT(userID, token.Refresh, ac.config.JWT.RefreshTokenSecret, ac.refreshTTL())
	if err != nil {
		return "", nil, fmt.Errorf("refresh token generation failed: %w", err)
	}

	return accessToken, &RefreshToken{
		UserID:    userID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().UTC().Add(ac.refreshTTL()),
	}, nil
}

func (ac *AuthController) generateAndSaveTokens(c *gin.Context, userID string) (string, string, error) {
	accessToken, refresh, err := ac.issueTokens(userID)
	if err != nil {
		return "", "", err
	}
	if err := ac.repo.SaveRefreshToken(c.Request.Context(), refresh); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return accessToken, refresh.Token, nil
}

// @Summary      Register a new user
// @Description  Create a new account with full name, email and password. Returns a token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} responses.SuccessResponse{data=AuthResponse} "User registered successfully"
// @Failure      400   {object} responses.ErrorResponse "Validation error or invalid input"
// @Failure      409   {object} responses.ErrorResponse "User with this email already exists"
// @Failure      500   {object} responses.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	categories, err := sport.ParseAll(req.SportPreferences)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	prefs := make(models.StringSlice, len(categories))
	for i, cat := range categories {
		prefs[i] = string(cat)
	}

	if _, err := ac.users.GetUserByEmail(ctx, email); err == nil {
		responses.SendError(c, http.StatusConflict, "User with this email already exists", nil)
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		responses.SendAppError(c, err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		ac.logger.Error("hashing password failed", zap.Error(err))
		responses.SendError(c, http.StatusInternalServerError, "Error hashing password", nil)
		return
	}

	newUser := &user.User{
		FullName:             strings.TrimSpace(req.FullName),
		Email:                email,
		PasswordHash:         hashedPassword,
		Role:                 user.RoleMember,
		SportPreferences:     prefs,
		NotificationsEnabled: true,
	}
	if err := ac.users.CreateUser(ctx, newUser); err != nil {
		ac.logger.Error("create user failed", zap.String("email", email), zap.Error(err))
		responses.SendAppError(c, err)
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(c, newUser.ID)
	if err != nil {
		ac.logger.Error("issuing tokens failed", zap.String("user_id", newUser.ID), zap.Error(err))
		responses.SendError(c, http.StatusInternalServerError, "Failed to generate tokens", nil)
		return
	}

	ac.logger.Info("user registered", zap.String("user_id", newUser.ID))
	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         newUser,
	})
}

// @Summary      Log in a user
// @Description  Authenticate with email and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200  {object} responses.SuccessResponse{data=AuthResponse} "Login successful"
// @Failure      400  {object} responses.ErrorResponse "Invalid input"
// @Failure      401  {object} responses.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	u, err := ac.users.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			responses.Unauthorized(c, "Invalid credentials")
			return
		}
		responses.SendAppError(c, err)
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(c, u.ID)
	if err != nil {
		ac.logger.Error("issuing tokens failed", zap.String("user_id", u.ID), zap.Error(err))
		responses.SendError(c, http.StatusInternalServerError, "Failed to generate tokens", nil)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Login successful", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u,
	})
}

// @Summary      Refresh access token
// @Description  Exchange a valid refresh token for a new token pair. The presented refresh token is revoked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        token  body  RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object} responses.SuccessResponse{data=AuthResponse} "Tokens refreshed"
// @Failure      400  {object} responses.ErrorResponse "Invalid input"
// @Failure      401  {object} responses.ErrorResponse "Invalid or expired refresh token"
// @Router       /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	ctx := c.Request.Context()

	claims, err := token.ValidateJWT(req.RefreshToken, token.Refresh, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		responses.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	u, err := ac.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			responses.Unauthorized(c, "User not found")
			return
		}
		responses.SendAppError(c, err)
		return
	}

	accessToken, next, err := ac.issueTokens(u.ID)
	if err != nil {
		ac.logger.Error("issuing tokens failed", zap.String("user_id", u.ID), zap.Error(err))
		responses.SendError(c, http.StatusInternalServerError, "Failed to generate tokens", nil)
		return
	}
	if err := ac.repo.RotateRefreshToken(ctx, req.RefreshToken, next); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			ac.logger.Warn("refresh token reuse or revoked token presented", zap.String("user_id", u.ID))
			responses.Unauthorized(c, "Refresh token has been revoked")
			return
		}
		responses.SendAppError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Tokens refreshed successfully", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: next.Token,
		User:         u,
	})
}

// @Summary      Log out
// @Description  Revoke one refresh token, or every session of the caller.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  LogoutRequest  false  "Which sessions to end"
// @Success      200  {object} responses.SuccessResponse
// @Failure      401  {object} responses.ErrorResponse
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req LogoutRequest
	// An empty body is allowed.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.ValidationFailed(c, validator.ParseError(err))
			return
		}
	}
	ctx := c.Request.Context()

	switch {
	case req.InvalidateAllSessions:
		err = ac.repo.InvalidateAllRefreshTokensForUser(ctx, userID)
	case req.RefreshToken != "":
		err = ac.repo.InvalidateRefreshToken(ctx, userID, req.RefreshToken)
	default:
		responses.BadRequest(c, "Provide refresh_token or set invalidate_all_sessions")
		return
	}
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary      Change password
// @Description  Replace the caller's password. Every existing session is revoked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  ChangePasswordRequest  true  "Old and new password"
// @Success      200  {object} responses.SuccessResponse
// @Failure      400  {object} responses.ErrorResponse
// @Failure      401  {object} responses.ErrorResponse "Old password is incorrect"
// @Router       /auth/change-password [post]
// @Security     BearerAuth
func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Error hashing password", nil)
		return
	}

	ctx := c.Request.Context()
	_, err = ac.users.UpdateUser(ctx, userID, func(u *user.User) (map[string]interface{}, error) {
		if !utils.CheckPassword(u.PasswordHash, req.OldPassword) {
			return nil, fmt.Errorf("%w: old password is incorrect", common.ErrForbidden)
		}
		u.PasswordHash = hashed
		return map[string]interface{}{"password_hash": hashed}, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrForbidden) {
			responses.Unauthorized(c, "Old password is incorrect")
			return
		}
		responses.SendAppError(c, err)
		return
	}

	if err := ac.repo.InvalidateAllRefreshTokensForUser(ctx, userID); err != nil {
		ac.logger.Warn("revoking sessions after password change failed", zap.String("user_id", userID), zap.Error(err))
	}
	responses.SendSuccess(c, http.StatusOK, "Password changed successfully", nil)
}
