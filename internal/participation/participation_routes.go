package participation

import (
	"github.com/gin-gonic/gin"
)

func RegisterParticipationRoutes(authenticated, admin *gin.RouterGroup, pc *ParticipationController) {
	authenticated.POST("/events/:event_id/join", pc.JoinEvent)
	authenticated.POST("/events/:event_id/leave", pc.LeaveEvent)

	admin.POST("/participation/reconcile", pc.Reconcile)
}
