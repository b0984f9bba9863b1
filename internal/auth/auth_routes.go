package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes mounts the credential endpoints. public must not carry the auth
// middleware, authenticated must.
func RegisterAuthRoutes(public, authenticated *gin.RouterGroup, ac *AuthController) {
	authPublic := public.Group("/auth")
	{
		authPublic.POST("/register", ac.Register)
		authPublic.POST("/login", ac.Login)
		authPublic.POST("/refresh-token", ac.RefreshToken)
	}

	authProtected := authenticated.Group("/auth")
	{
		authProtected.POST("/change-password", ac.ChangePassword)
		authProtected.POST("/logout", ac.Logout)
	}
}
