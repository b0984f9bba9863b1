package sport

import (
	"github.com/gin-gonic/gin"
)

func RegisterSportRoutes(router *gin.RouterGroup) {
	sportController := NewSportController()

	publicSports := router.Group("/sports")
	{
		publicSports.GET("", sportController.GetAllSports)
		publicSports.GET("/:category", sportController.GetSport)
	}
}
