package rewards

import (
	"github.com/gin-gonic/gin"
)

func RegisterRewardsRoutes(authenticated, admin *gin.RouterGroup, rc *RewardsController) {
	rewards := authenticated.Group("/rewards")
	{
		rewards.GET("", rc.GetCatalog)
		rewards.GET("/balance", rc.GetBalance)
		rewards.GET("/history", rc.GetHistory)
		rewards.POST("/redeem", rc.Redeem)
	}

	admin.POST("/rewards/award", rc.Award)
}
