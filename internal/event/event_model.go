package event

import (
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/dustin/go-humanize"
)

type Location struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event is a hosted sporting activity. Participants has set semantics; only the
// participation engine appends to it.
type Event struct {
	models.BaseModel
	Title           string             `json:"title" gorm:"not null"`
	Description     string             `json:"description"`
	HostID          string             `json:"host_id" gorm:"type:varchar(36);index;not null"`
	Sport           sport.Category     `json:"sport" gorm:"type:varchar(32);index;not null"`
	Date            time.Time          `json:"date" gorm:"index;not null"`
	ExpiryDate      *time.Time         `json:"expiry_date" gorm:"index"`
	Location        Location           `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	MaxParticipants int                `json:"max_participants" gorm:"not null"`
	Participants    models.StringSlice `json:"participants" gorm:"type:jsonb"`
	IsFeatured      bool               `json:"is_featured" gorm:"index"`
	IsTournament    bool               `json:"is_tournament"`
	PrizePool       *string            `json:"prize_pool,omitempty"`
	Rules           *string            `json:"rules,omitempty"`
	Requirements    *string            `json:"requirements,omitempty"`
	ChatRoomID      string             `json:"chat_room_id" gorm:"type:varchar(36)"`
	Version         int64              `json:"-" gorm:"not null"`
}

func (e *Event) ParticipantCount() int {
	return len(e.Participants)
}

func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.MaxParticipants
}

// IsExpired reports whether the expiry has passed. Events without an expiry never expire.
func (e *Event) IsExpired(now time.Time) bool {
	return e.ExpiryDate != nil && e.ExpiryDate.Before(now)
}

// TimeRemaining describes how far away the start is, e.g. "3 hours from now".
func (e *Event) TimeRemaining(now time.Time) string {
	if !e.Date.After(now) {
		return "started"
	}
	return humanize.RelTime(now, e.Date, "from now", "ago")
}

// ExpiryStatus reads "expires 2 days from now" or "expired".
func (e *Event) ExpiryStatus(now time.Time) string {
	if e.ExpiryDate == nil {
		return "no expiry"
	}
	if e.IsExpired(now) {
		return "expired"
	}
	return "expires " + humanize.RelTime(now, *e.ExpiryDate, "from now", "ago")
}

// Members returns the host followed by every participant, without duplicates.
func (e *Event) Members() []string {
	out := make([]string, 0, len(e.Participants)+1)
	out = append(out, e.HostID)
	for _, p := range e.Participants {
		if p != e.HostID {
			out = append(out, p)
		}
	}
	return out
}

// Response is the wire shape of an event including the derived fields.
type Response struct {
	Event
	ParticipantCount int    `json:"participant_count"`
	IsFull           bool   `json:"is_full"`
	IsExpired        bool   `json:"is_expired"`
	TimeRemaining    string `json:"time_remaining"`
	ExpiryStatus     string `json:"expiry_status"`
}

func (e Event) ToResponse(now time.Time) Response {
	if e.Participants == nil {
		e.Participants = models.StringSlice{}
	}
	return Response{
		Event:            e,
		ParticipantCount: e.ParticipantCount(),
		IsFull:           e.IsFull(),
		IsExpired:        e.IsExpired(now),
		TimeRemaining:    e.TimeRemaining(now),
		ExpiryStatus:     e.ExpiryStatus(now),
	}
}

func ToResponses(events []Event, now time.Time) []Response {
	out := make([]Response, 0, len(events))
	for _, e := range events {
		out = append(out, e.ToResponse(now))
	}
	return out
}

type LocationInput struct {
	Name      string  `json:"name" binding:"required,max=200"`
	Address   string  `json:"address" binding:"max=300"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type CreateEventRequest struct {
	Title           string        `json:"title" binding:"required,min=1,max=120"`
	Description     string        `json:"description" binding:"max=2000"`
	Sport           string        `json:"sport" binding:"required"`
	Date            time.Time     `json:"date" binding:"required"`
	ExpiryDate      *time.Time    `json:"expiry_date,omitempty"`
	Location        LocationInput `json:"location" binding:"required"`
	MaxParticipants int           `json:"max_participants" binding:"required,min=1"`
	IsFeatured      bool          `json:"is_featured"`
	IsTournament    bool          `json:"is_tournament"`
	PrizePool       *string       `json:"prize_pool,omitempty"`
	Rules           *string       `json:"rules,omitempty"`
	Requirements    *string       `json:"requirements,omitempty"`
}

type UpdateEventRequest struct {
	Title           *string        `json:"title,omitempty" binding:"omitempty,min=1,max=120"`
	Description     *string        `json:"description,omitempty" binding:"omitempty,max=2000"`
	Sport           *string        `json:"sport,omitempty"`
	Date            *time.Time     `json:"date,omitempty"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`
	Location        *LocationInput `json:"location,omitempty"`
	MaxParticipants *int           `json:"max_participants,omitempty" binding:"omitempty,min=1"`
	IsFeatured      *bool          `json:"is_featured,omitempty"`
	IsTournament    *bool          `json:"is_tournament,omitempty"`
	PrizePool       *string        `json:"prize_pool,omitempty"`
	Rules           *string        `json:"rules,omitempty"`
	Requirements    *string        `json:"requirements,omitempty"`
}

// SweepResult is returned by the admin sweep endpoint.
type SweepResult struct {
	Removed int `json:"removed"`
}
