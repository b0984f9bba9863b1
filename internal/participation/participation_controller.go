package participation

import (
	"net/http"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/gin-gonic/gin"
)

type ParticipationController struct {
	engine *Engine
}

func NewParticipationController(engine *Engine) *ParticipationController {
	return &ParticipationController{engine: engine}
}

// MembershipResponse is returned by join and leave.
type MembershipResponse struct {
	Event          event.Response `json:"event"`
	Joined         bool           `json:"joined"`
	Changed        bool           `json:"changed"`
	JoinedEventIDs []string       `json:"joined_event_ids"`
}

// JoinEvent godoc
// @Summary Join an event
// @Description Idempotent. Fails when the event is full or expired.
// @Tags Events
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} responses.SuccessResponse{data=MembershipResponse}
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Failure 409 {object} responses.ErrorResponse "Event full or expired"
// @Failure 503 {object} responses.ErrorResponse "Store unavailable"
// @Router /events/{event_id}/join [post]
// @Security BearerAuth
func (pc *ParticipationController) JoinEvent(c *gin.Context) {
	pc.change(c, true)
}

// LeaveEvent godoc
// @Summary Leave an event
// @Description Leaving an event one is not part of is a no-op.
// @Tags Events
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} responses.SuccessResponse{data=MembershipResponse}
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id}/leave [post]
// @Security BearerAuth
func (pc *ParticipationController) LeaveEvent(c *gin.Context) {
	pc.change(c, false)
}

func (pc *ParticipationController) change(c *gin.Context, joining bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var out *Outcome
	if joining {
		out, err = pc.engine.Join(c.Request.Context(), c.Param("event_id"), userID)
	} else {
		out, err = pc.engine.Leave(c.Request.Context(), c.Param("event_id"), userID)
	}
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	message := "Left event"
	if joining {
		message = "Joined event"
	}
	joined := out.User.JoinedEventIDs
	if joined == nil {
		joined = []string{}
	}
	responses.SendSuccess(c, http.StatusOK, message, MembershipResponse{
		Event:          out.Event.ToResponse(time.Now()),
		Joined:         out.Event.Participants.Contains(userID),
		Changed:        out.Changed,
		JoinedEventIDs: joined,
	})
}

// Reconcile godoc
// @Summary Repair participant and joined-event list drift
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Report}
// @Router /admin/participation/reconcile [post]
// @Security BearerAuth
func (pc *ParticipationController) Reconcile(c *gin.Context) {
	report, err := pc.engine.Reconcile(c.Request.Context())
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Participation reconciled", report)
}
