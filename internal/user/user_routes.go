package user

import (
	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(authenticated *gin.RouterGroup, uc *UserController) {
	authenticated.GET("/auth/me", uc.GetMe)

	users := authenticated.Group("/users")
	{
		users.PUT("/me", uc.UpdateMe)
		users.PUT("/me/preferences", uc.UpdatePreferences)
		users.GET("/:user_id", uc.GetUser)
		users.POST("/:user_id/follow", uc.Follow)
		users.DELETE("/:user_id/follow", uc.Unfollow)
		users.GET("/:user_id/followers", uc.GetFollowers)
		users.GET("/:user_id/following", uc.GetFollowing)
	}
}
