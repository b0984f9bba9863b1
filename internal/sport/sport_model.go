// sport/model.go
package sport

import (
	"fmt"
	"strings"

	"github.com/DhavalSuthar-24/huddle/internal/common"
)

// Category is the closed set of sports an event can be filed under.
type Category string

const (
	Basketball Category = "basketball"
	Soccer     Category = "soccer"
	Football   Category = "football"
	Tennis     Category = "tennis"
	Volleyball Category = "volleyball"
	Baseball   Category = "baseball"
	Running    Category = "running"
	Cycling    Category = "cycling"
	Swimming   Category = "swimming"
	Yoga       Category = "yoga"
	Hiking     Category = "hiking"
	Other      Category = "other"
)

// Sport describes a category for display.
type Sport struct {
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
}

var catalog = []Sport{
	{Basketball, "Basketball", "basketball", "Pickup games and 3v3 runs"},
	{Soccer, "Soccer", "soccerball", "Five-a-side to full pitch"},
	{Football, "Football", "football", "Flag and touch football"},
	{Tennis, "Tennis", "tennisball", "Singles and doubles"},
	{Volleyball, "Volleyball", "volleyball", "Indoor and beach"},
	{Baseball, "Baseball", "baseball", "Softball and baseball"},
	{Running, "Running", "figure.run", "Group runs of any distance"},
	{Cycling, "Cycling", "bicycle", "Road and trail rides"},
	{Swimming, "Swimming", "figure.pool.swim", "Pool and open water"},
	{Yoga, "Yoga", "figure.yoga", "Outdoor and studio sessions"},
	{Hiking, "Hiking", "figure.hiking", "Trail hikes"},
	{Other, "Other", "sportscourt", "Everything else"},
}

// All returns the catalog in display order.
func All() []Sport {
	out := make([]Sport, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for c.
func Lookup(c Category) (Sport, bool) {
	for _, s := range catalog {
		if s.Category == c {
			return s, true
		}
	}
	return Sport{}, false
}

func (c Category) Valid() bool {
	_, ok := Lookup(c)
	return ok
}

// Parse maps user input onto a Category, case-insensitively.
func Parse(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown sport category %q", common.ErrValidation, raw)
	}
	return c, nil
}

// ParseOptional treats an empty string as "no filter".
func ParseOptional(raw string) (*Category, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseAll validates a preference list and drops duplicates, keeping first occurrence.
func ParseAll(raw []string) ([]Category, error) {
	seen := make(map[Category]bool, len(raw))
	out := make([]Category, 0, len(raw))
	for _, r := range raw {
		c, err := Parse(r)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
