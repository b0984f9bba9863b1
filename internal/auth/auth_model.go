package auth

import (
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/user"
)

// RefreshToken is a persisted refresh credential. Rotation revokes the old row.
type RefreshToken struct {
	models.BaseModel
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Revoked   bool      `json:"revoked" gorm:"default:false"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RegisterRequest struct {
	FullName         string   `json:"full_name" binding:"required,max=120" example:"John Doe"`
	Email            string   `json:"email" binding:"required,email" example:"john@example.com"`
	Password         string   `json:"password" binding:"required,min=8,max=72" example:"password123"`
	SportPreferences []string `json:"sport_preferences,omitempty" example:"football,tennis"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=NewPassword"`
}

type LogoutRequest struct {
	RefreshToken          string `json:"refresh_token"`           // Optional: specific token to invalidate
	InvalidateAllSessions bool   `json:"invalidate_all_sessions"` // If true, invalidate all user's sessions
}

type AuthResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *user.User `json:"user"`
}
