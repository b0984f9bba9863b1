package companion

import (
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CompanionController struct {
	hub    *Hub
	logger *zap.Logger
}

func NewCompanionController(hub *Hub, logger *zap.Logger) *CompanionController {
	return &CompanionController{hub: hub, logger: logger}
}

// Connect godoc
// @Summary Open the companion device channel
// @Description Upgrades to a websocket. The server pushes {"joinedEvents":[...]} snapshots and {"requestLocation":true}; the device may send {"location":{"latitude":..,"longitude":..}}.
// @Tags Companion
// @Success 101 "Switching Protocols"
// @Failure 401 {object} responses.ErrorResponse
// @Router /companion/ws [get]
// @Security BearerAuth
func (cc *CompanionController) Connect(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	if err := cc.hub.Serve(c.Writer, c.Request, userID); err != nil {
		// the upgrader has already written the HTTP error
		cc.logger.Debug("companion upgrade failed", zap.String("user_id", userID), zap.Error(err))
	}
}
