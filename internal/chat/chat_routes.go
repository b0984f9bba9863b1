package chat

import (
	"github.com/gin-gonic/gin"
)

func RegisterChatRoutes(authenticated *gin.RouterGroup, cc *ChatController) {
	chats := authenticated.Group("/chats")
	{
		chats.GET("", cc.ListChats)
		chats.POST("", cc.CreateChat)
		chats.GET("/:chat_id/messages", cc.GetMessages)
		chats.POST("/:chat_id/messages", cc.PostMessage)
	}
}
