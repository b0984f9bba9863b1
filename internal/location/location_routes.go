package location

import (
	"github.com/gin-gonic/gin"
)

func RegisterLocationRoutes(authenticated *gin.RouterGroup, lc *LocationController) {
	authenticated.PUT("/users/me/location", lc.UpdateMyLocation)
	authenticated.DELETE("/users/me/location", lc.ForgetMyLocation)
}
