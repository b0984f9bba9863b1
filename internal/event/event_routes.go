package event

import (
	"github.com/gin-gonic/gin"
)

func RegisterEventRoutes(authenticated, admin *gin.RouterGroup, ec *EventController) {
	events := authenticated.Group("/events")
	{
		events.GET("", ec.ListEvents)
		events.POST("", ec.CreateEvent)
		events.GET("/mine", ec.GetMyEvents)
		events.GET("/joined", ec.GetJoinedEvents)
		events.GET("/:event_id", ec.GetEvent)
		events.PUT("/:event_id", ec.UpdateEvent)
		events.DELETE("/:event_id", ec.DeleteEvent)
	}

	admin.POST("/events/sweep", ec.SweepExpired)
}
