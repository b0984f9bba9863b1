package sport

import (
	"net/http"

	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/gin-gonic/gin"
)

// SportController serves the sport category catalog.
type SportController struct{}

func NewSportController() *SportController {
	return &SportController{}
}

// GetAllSports godoc
// @Summary List sport categories
// @Description Returns the closed set of sport categories events can be filed under
// @Tags Sports
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Sport}
// @Router /sports [get]
func (sc *SportController) GetAllSports(c *gin.Context) {
	responses.SendSuccess(c, http.StatusOK, "Sports retrieved successfully", All())
}

// GetSport godoc
// @Summary Get a sport category
// @Tags Sports
// @Produce json
// @Param category path string true "Sport category"
// @Success 200 {object} responses.SuccessResponse{data=Sport}
// @Failure 400 {object} responses.ErrorResponse "Unknown category"
// @Router /sports/{category} [get]
func (sc *SportController) GetSport(c *gin.Context) {
	category, err := Parse(c.Param("category"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	s, _ := Lookup(category)
	responses.SendSuccess(c, http.StatusOK, "Sport retrieved successfully", s)
}
