package user

import (
	"net/http"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserController(repo UserRepository, logger *zap.Logger) *UserController {
	return &UserController{repo: repo, logger: logger}
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=User}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/me [get]
// @Security BearerAuth
func (uc *UserController) GetMe(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	u, err := uc.repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", u)
}

// GetUser godoc
// @Summary Get a user's public profile
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse{data=PublicProfile}
// @Failure 404 {object} responses.ErrorResponse "User not found"
// @Router /users/{user_id} [get]
// @Security BearerAuth
func (uc *UserController) GetUser(c *gin.Context) {
	u, err := uc.repo.GetUserByID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "User retrieved successfully", u.Public())
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} responses.SuccessResponse{data=User}
// @Failure 400 {object} responses.ErrorResponse "Validation error"
// @Router /users/me [put]
// @Security BearerAuth
func (uc *UserController) UpdateMe(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	u, err := uc.repo.UpdateUser(c.Request.Context(), userID, func(u *User) (map[string]interface{}, error) {
		updates := map[string]interface{}{}
		if req.FullName != nil {
			u.FullName = *req.FullName
			updates["full_name"] = u.FullName
		}
		if req.ProfileImage != nil {
			u.ProfileImage = *req.ProfileImage
			updates["profile_image"] = u.ProfileImage
		}
		if req.NotificationsEnabled != nil {
			u.NotificationsEnabled = *req.NotificationsEnabled
			updates["notifications_enabled"] = u.NotificationsEnabled
		}
		return updates, nil
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile updated successfully", u)
}

// UpdatePreferences godoc
// @Summary Replace the authenticated user's sport preferences
// @Tags Users
// @Accept json
// @Produce json
// @Param preferences body UpdatePreferencesRequest true "Sport categories"
// @Success 200 {object} responses.SuccessResponse{data=User}
// @Failure 400 {object} responses.ErrorResponse "Unknown category"
// @Router /users/me/preferences [put]
// @Security BearerAuth
func (uc *UserController) UpdatePreferences(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	categories, err := sport.ParseAll(req.SportPreferences)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	prefs := make([]string, len(categories))
	for i, cat := range categories {
		prefs[i] = string(cat)
	}

	u, err := uc.repo.UpdateUser(c.Request.Context(), userID, func(u *User) (map[string]interface{}, error) {
		u.SportPreferences = prefs
		return map[string]interface{}{"sport_preferences": u.SportPreferences}, nil
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Preferences updated successfully", u)
}

// Follow godoc
// @Summary Follow a user
// @Tags Users
// @Param user_id path string true "User to follow"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse "Cannot follow yourself"
// @Failure 404 {object} responses.ErrorResponse "User not found"
// @Router /users/{user_id}/follow [post]
// @Security BearerAuth
func (uc *UserController) Follow(c *gin.Context) {
	uc.changeFollow(c, true)
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags Users
// @Param user_id path string true "User to unfollow"
// @Success 200 {object} responses.SuccessResponse
// @Router /users/{user_id}/follow [delete]
// @Security BearerAuth
func (uc *UserController) Unfollow(c *gin.Context) {
	uc.changeFollow(c, false)
}

func (uc *UserController) changeFollow(c *gin.Context, follow bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	targetID := c.Param("user_id")

	if follow {
		err = uc.repo.Follow(c.Request.Context(), userID, targetID)
	} else {
		err = uc.repo.Unfollow(c.Request.Context(), userID, targetID)
	}
	if err != nil {
		uc.logger.Warn("follow change failed", zap.String("user_id", userID), zap.String("target_id", targetID), zap.Bool("follow", follow), zap.Error(err))
		responses.SendAppError(c, err)
		return
	}

	message := "User unfollowed successfully"
	if follow {
		message = "User followed successfully"
	}
	responses.SendSuccess(c, http.StatusOK, message, gin.H{"user_id": targetID, "following": follow})
}

// GetFollowers godoc
// @Summary List a user's followers
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse{data=[]PublicProfile}
// @Router /users/{user_id}/followers [get]
// @Security BearerAuth
func (uc *UserController) GetFollowers(c *gin.Context) {
	uc.listConnections(c, func(u *User) []string { return u.Followers })
}

// GetFollowing godoc
// @Summary List the users a user follows
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse{data=[]PublicProfile}
// @Router /users/{user_id}/following [get]
// @Security BearerAuth
func (uc *UserController) GetFollowing(c *gin.Context) {
	uc.listConnections(c, func(u *User) []string { return u.Following })
}

func (uc *UserController) listConnections(c *gin.Context, pick func(*User) []string) {
	u, err := uc.repo.GetUserByID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	users, err := uc.repo.GetUsersByIDs(c.Request.Context(), pick(u))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	profiles := make([]PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	responses.SendSuccess(c, http.StatusOK, "Users retrieved successfully", profiles)
}
