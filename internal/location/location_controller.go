package location

import (
	"net/http"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
)

type LocationController struct {
	registry *Registry
}

func NewLocationController(registry *Registry) *LocationController {
	return &LocationController{registry: registry}
}

// UpdateMyLocation godoc
// @Summary Report the caller's current location
// @Tags Users
// @Accept json
// @Produce json
// @Param location body Coordinate true "Coordinate"
// @Success 200 {object} responses.SuccessResponse{data=Coordinate}
// @Failure 400 {object} responses.ErrorResponse
// @Router /users/me/location [put]
// @Security BearerAuth
func (lc *LocationController) UpdateMyLocation(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var coord Coordinate
	if err := c.ShouldBindJSON(&coord); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	if err := lc.registry.Update(userID, coord); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Location updated", coord)
}

// ForgetMyLocation godoc
// @Summary Clear the caller's stored location
// @Tags Users
// @Success 200 {object} responses.SuccessResponse
// @Router /users/me/location [delete]
// @Security BearerAuth
func (lc *LocationController) ForgetMyLocation(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	lc.registry.Forget(userID)
	responses.SendSuccess(c, http.StatusOK, "Location cleared", nil)
}
