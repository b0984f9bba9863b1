package companion

import (
	"github.com/gin-gonic/gin"
)

func RegisterCompanionRoutes(authenticated *gin.RouterGroup, cc *CompanionController) {
	authenticated.GET("/companion/ws", cc.Connect)
}
