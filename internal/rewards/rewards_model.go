package rewards

import (
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/models"
)

// TokenTransaction is an append-only ledger entry. Positive amounts are awards,
// negative amounts are redemptions.
type TokenTransaction struct {
	models.BaseModel
	UserID     string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Amount     int       `json:"amount" gorm:"not null"`
	Date       time.Time `json:"date" gorm:"index;not null"`
	EventName  *string   `json:"event_name,omitempty"`
	RewardName *string   `json:"reward_name,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
}

type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

var catalog = []Reward{
	{ID: "water-bottle", Name: "Huddle Water Bottle", Description: "Insulated 750ml bottle", Cost: 50},
	{ID: "free-event", Name: "Free Tournament Entry", Description: "Waive the entry fee of one tournament", Cost: 100},
	{ID: "jersey", Name: "Team Jersey", Description: "Custom printed jersey", Cost: 250},
	{ID: "pro-session", Name: "Pro Coaching Session", Description: "One hour with a certified coach", Cost: 500},
}

func Catalog() []Reward {
	out := make([]Reward, len(catalog))
	copy(out, catalog)
	return out
}

func LookupReward(id string) (Reward, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Reward{}, false
}

type RedeemRequest struct {
	RewardID string `json:"reward_id" binding:"required"`
}

type AwardRequest struct {
	UserID    string  `json:"user_id" binding:"required"`
	Amount    int     `json:"amount" binding:"required,min=1"`
	Reason    *string `json:"reason,omitempty"`
	EventName *string `json:"event_name,omitempty"`
}

type BalanceResponse struct {
	Balance int `json:"balance"`
}

type LedgerResponse struct {
	Transaction TokenTransaction `json:"transaction"`
	Balance     int              `json:"balance"`
}
