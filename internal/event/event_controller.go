package event

import (
	"net/http"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventController struct {
	repo   EventRepository
	users  user.UserRepository
	logger *zap.Logger
}

func NewEventController(repo EventRepository, users user.UserRepository, logger *zap.Logger) *EventController {
	return &EventController{repo: repo, users: users, logger: logger}
}

// ListEvents godoc
// @Summary List upcoming events
// @Description Events whose expiry lies in the future, ordered by expiry then date
// @Tags Events
// @Produce json
// @Param category query string false "Sport category filter"
// @Success 200 {object} responses.SuccessResponse{data=[]Response}
// @Failure 400 {object} responses.ErrorResponse "Unknown category"
// @Failure 503 {object} responses.ErrorResponse "Store unavailable"
// @Router /events [get]
// @Security BearerAuth
func (ec *EventController) ListEvents(c *gin.Context) {
	category, err := sport.ParseOptional(c.Query("category"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	events, err := ec.repo.FetchUpcoming(c.Request.Context(), category)
	if err != nil {
		ec.logger.Error("failed to fetch upcoming events", zap.Error(err))
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Events retrieved successfully", ToResponses(events, time.Now()))
}

// GetMyEvents godoc
// @Summary List events hosted by the caller
// @Tags Events
// @Produce json
// @Param category query string false "Sport category filter"
// @Success 200 {object} responses.SuccessResponse{data=[]Response}
// @Router /events/mine [get]
// @Security BearerAuth
func (ec *EventController) GetMyEvents(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	category, err := sport.ParseOptional(c.Query("category"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	events, err := ec.repo.FetchByHost(c.Request.Context(), userID, category)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Hosted events retrieved successfully", ToResponses(events, time.Now()))
}

// GetJoinedEvents godoc
// @Summary List events the caller has joined
// @Tags Events
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Response}
// @Router /events/joined [get]
// @Security BearerAuth
func (ec *EventController) GetJoinedEvents(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	u, err := ec.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	events, err := ec.repo.FetchByIDs(c.Request.Context(), u.JoinedEventIDs)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Joined events retrieved successfully", ToResponses(events, time.Now()))
}

// GetEvent godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} responses.SuccessResponse{data=Response}
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id} [get]
// @Security BearerAuth
func (ec *EventController) GetEvent(c *gin.Context) {
	e, err := ec.repo.GetByID(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Event retrieved successfully", e.ToResponse(time.Now()))
}

// CreateEvent godoc
// @Summary Host a new event
// @Description Creates the event and its chat room. expiry_date defaults to the date plus the configured default expiry.
// @Tags Events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event details"
// @Success 201 {object} responses.SuccessResponse{data=Response}
// @Failure 400 {object} responses.ErrorResponse "Validation error"
// @Router /events [post]
// @Security BearerAuth
func (ec *EventController) CreateEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	category, err := sport.Parse(req.Sport)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	e := &Event{
		Title:           req.Title,
		Description:     req.Description,
		HostID:          userID,
		Sport:           category,
		Date:            req.Date,
		ExpiryDate:      req.ExpiryDate,
		Location:        Location(req.Location),
		MaxParticipants: req.MaxParticipants,
		IsFeatured:      req.IsFeatured,
		IsTournament:    req.IsTournament,
		PrizePool:       req.PrizePool,
		Rules:           req.Rules,
		Requirements:    req.Requirements,
	}
	if _, err := ec.repo.Create(c.Request.Context(), e); err != nil {
		ec.logger.Warn("failed to create event", zap.String("host_id", userID), zap.Error(err))
		responses.SendAppError(c, err)
		return
	}
	ec.logger.Info("event created", zap.String("event_id", e.ID), zap.String("host_id", userID), zap.String("sport", string(e.Sport)))
	responses.SendSuccess(c, http.StatusCreated, "Event created successfully", e.ToResponse(time.Now()))
}

// UpdateEvent godoc
// @Summary Edit an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} responses.SuccessResponse{data=Response}
// @Failure 400 {object} responses.ErrorResponse "Validation error"
// @Failure 403 {object} responses.ErrorResponse "Not the host"
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id} [put]
// @Security BearerAuth
func (ec *EventController) UpdateEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	var category *sport.Category
	if req.Sport != nil {
		parsed, err := sport.Parse(*req.Sport)
		if err != nil {
			responses.SendAppError(c, err)
			return
		}
		category = &parsed
	}

	e, err := ec.repo.Update(c.Request.Context(), userID, c.Param("event_id"), func(e *Event) (map[string]interface{}, error) {
		return req.apply(e, category), nil
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Event updated successfully", e.ToResponse(time.Now()))
}

// apply copies the set fields onto e and returns the matching column updates.
func (req *UpdateEventRequest) apply(e *Event, category *sport.Category) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Title != nil {
		e.Title = *req.Title
		updates["title"] = e.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
		updates["description"] = e.Description
	}
	if category != nil {
		e.Sport = *category
		updates["sport"] = e.Sport
	}
	if req.Date != nil {
		e.Date = req.Date.UTC()
		updates["date"] = e.Date
	}
	if req.ExpiryDate != nil {
		expiry := req.ExpiryDate.UTC()
		e.ExpiryDate = &expiry
		updates["expiry_date"] = expiry
	}
	if req.Location != nil {
		e.Location = Location(*req.Location)
		updates["location_name"] = e.Location.Name
		updates["location_address"] = e.Location.Address
		updates["location_latitude"] = e.Location.Latitude
		updates["location_longitude"] = e.Location.Longitude
	}
	if req.MaxParticipants != nil {
		e.MaxParticipants = *req.MaxParticipants
		updates["max_participants"] = e.MaxParticipants
	}
	if req.IsFeatured != nil {
		e.IsFeatured = *req.IsFeatured
		updates["is_featured"] = e.IsFeatured
	}
	if req.IsTournament != nil {
		e.IsTournament = *req.IsTournament
		updates["is_tournament"] = e.IsTournament
	}
	if req.PrizePool != nil {
		e.PrizePool = req.PrizePool
		updates["prize_pool"] = *req.PrizePool
	}
	if req.Rules != nil {
		e.Rules = req.Rules
		updates["rules"] = *req.Rules
	}
	if req.Requirements != nil {
		e.Requirements = req.Requirements
		updates["requirements"] = *req.Requirements
	}
	return updates
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Events
// @Param event_id path string true "Event ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Not the host"
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id} [delete]
// @Security BearerAuth
func (ec *EventController) DeleteEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	eventID := c.Param("event_id")
	if err := ec.repo.Delete(c.Request.Context(), userID, eventID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	ec.logger.Info("event deleted", zap.String("event_id", eventID), zap.String("host_id", userID))
	responses.SendSuccess(c, http.StatusOK, "Event deleted successfully", nil)
}

// SweepExpired godoc
// @Summary Remove every expired event now
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=SweepResult}
// @Failure 403 {object} responses.ErrorResponse
// @Router /admin/events/sweep [post]
// @Security BearerAuth
func (ec *EventController) SweepExpired(c *gin.Context) {
	removed, err := ec.repo.SweepExpired(c.Request.Context())
	if err != nil {
		ec.logger.Error("manual sweep failed", zap.Error(err))
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Expired events removed", SweepResult{Removed: removed})
}
