package user

import (
	"github.com/DhavalSuthar-24/huddle/internal/models"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is bound 1:1 to an authentication identity.
type User struct {
	models.BaseModel
	FullName             string             `json:"full_name" gorm:"not null"`
	Email                string             `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash         string             `json:"-" gorm:"not null"`
	Role                 Role               `json:"role" gorm:"type:varchar(16);not null"`
	SportPreferences     models.StringSlice `json:"sport_preferences" gorm:"type:jsonb"`
	TokenBalance         int                `json:"token_balance" gorm:"not null"`
	JoinedEventIDs       models.StringSlice `json:"joined_event_ids" gorm:"type:jsonb"`
	HostedEventIDs       models.StringSlice `json:"hosted_event_ids" gorm:"type:jsonb"`
	Followers            models.StringSlice `json:"followers" gorm:"type:jsonb"`
	Following            models.StringSlice `json:"following" gorm:"type:jsonb"`
	ProfileImage         string             `json:"profile_image"`
	NotificationsEnabled bool               `json:"notifications_enabled"`
	Version              int64              `json:"-" gorm:"not null"`
}

// PublicProfile is what other users get to see.
type PublicProfile struct {
	ID               string   `json:"id"`
	FullName         string   `json:"full_name"`
	ProfileImage     string   `json:"profile_image,omitempty"`
	SportPreferences []string `json:"sport_preferences"`
	HostedEventIDs   []string `json:"hosted_event_ids"`
	FollowerCount    int      `json:"follower_count"`
	FollowingCount   int      `json:"following_count"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfileImage:     u.ProfileImage,
		SportPreferences: nonNil(u.SportPreferences),
		HostedEventIDs:   nonNil(u.HostedEventIDs),
		FollowerCount:    len(u.Followers),
		FollowingCount:   len(u.Following),
	}
}

func nonNil(s models.StringSlice) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type UpdateProfileRequest struct {
	FullName             *string `json:"full_name,omitempty" binding:"omitempty,min=1,max=120"`
	ProfileImage         *string `json:"profile_image,omitempty" binding:"omitempty,max=512"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

type UpdatePreferencesRequest struct {
	SportPreferences []string `json:"sport_preferences" binding:"required"`
}
