package feed

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/gin-gonic/gin"
)

type FeedController struct {
	service *Service
}

func NewFeedController(service *Service) *FeedController {
	return &FeedController{service: service}
}

type NearbyEvent struct {
	event.Response
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type FeedResponse struct {
	Epoch        int64            `json:"epoch"`
	Category     *sport.Category  `json:"category,omitempty"`
	Featured     []event.Response `json:"featured"`
	Popular      []event.Response `json:"popular"`
	Nearby       []NearbyEvent    `json:"nearby"`
	NearbySorted bool             `json:"nearby_sorted"`
	Mine         []event.Response `json:"mine"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// GetFeed godoc
// @Summary Get the event feed
// @Description Featured, Popular, Nearby and Mine views from one fetch. Without a location, nearby keeps fetch order and nearby_sorted is false. The epoch is echoed back unchanged.
// @Tags Feed
// @Produce json
// @Param category query string false "Sport category filter"
// @Param lat query number false "Latitude override"
// @Param lng query number false "Longitude override"
// @Param epoch query int false "Client request sequence number"
// @Success 200 {object} responses.SuccessResponse{data=FeedResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse "Store unavailable"
// @Router /feed [get]
// @Security BearerAuth
func (fc *FeedController) GetFeed(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	req, err := parseRequest(c, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	views, err := fc.service.Build(c.Request.Context(), req)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Feed retrieved successfully", render(views))
}

func parseRequest(c *gin.Context, userID string) (Request, error) {
	req := Request{UserID: userID}

	category, err := sport.ParseOptional(c.Query("category"))
	if err != nil {
		return req, err
	}
	req.Category = category

	if raw := c.Query("epoch"); raw != "" {
		epoch, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: epoch must be an integer", common.ErrValidation)
		}
		req.Epoch = epoch
	}

	lat, lng := c.Query("lat"), c.Query("lng")
	switch {
	case lat == "" && lng == "":
	case lat == "" || lng == "":
		return req, fmt.Errorf("%w: lat and lng must be given together", common.ErrValidation)
	default:
		var coord location.Coordinate
		if coord.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
			return req, fmt.Errorf("%w: invalid lat", common.ErrValidation)
		}
		if coord.Longitude, err = strconv.ParseFloat(lng, 64); err != nil {
			return req, fmt.Errorf("%w: invalid lng", common.ErrValidation)
		}
		if err := coord.Validate(); err != nil {
			return req, err
		}
		req.Location = &coord
	}
	return req, nil
}

func render(v *Views) FeedResponse {
	now := time.Now()
	nearby := make([]NearbyEvent, 0, len(v.Nearby))
	for _, e := range v.Nearby {
		item := NearbyEvent{Response: e.ToResponse(now)}
		if d, ok := v.Distances[e.ID]; ok {
			d := d
			item.DistanceKm = &d
		}
		nearby = append(nearby, item)
	}
	return FeedResponse{
		Epoch:        v.Epoch,
		Category:     v.Category,
		Featured:     event.ToResponses(v.Featured, now),
		Popular:      event.ToResponses(v.Popular, now),
		Nearby:       nearby,
		NearbySorted: v.NearbySorted,
		Mine:         event.ToResponses(v.Mine, now),
		GeneratedAt:  v.GeneratedAt,
	}
}
