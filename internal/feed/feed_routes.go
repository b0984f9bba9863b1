package feed

import (
	"github.com/gin-gonic/gin"
)

func RegisterFeedRoutes(authenticated *gin.RouterGroup, fc *FeedController) {
	authenticated.GET("/feed", fc.GetFeed)
}
