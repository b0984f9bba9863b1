// Package feed derives the Featured, Popular, Nearby and Mine views of the event list.
// The derivations never touch the store; they only sort and filter what was fetched.
package feed

import (
	"sort"

	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/location"
)

// Featured keeps the featured events, earliest first.
func Featured(batch []event.Event) []event.Event {
	out := make([]event.Event, 0, len(batch))
	for _, e := range batch {
		if e.IsFeatured {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Popular orders the whole batch by participant count, busiest first. Ties keep fetch order.
func Popular(batch []event.Event) []event.Event {
	out := clone(batch)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Participants) > len(out[j].Participants)
	})
	return out
}

// Nearby orders the batch by distance from the provider's location, closest first.
// Without a location the batch is returned in fetch order and sorted is false.
func Nearby(batch []event.Event, p location.Provider) (out []event.Event, distances map[string]float64, sorted bool) {
	out = clone(batch)
	origin, ok := p.LastKnownLocation()
	if !ok {
		return out, nil, false
	}

	distances = make(map[string]float64, len(out))
	for _, e := range out {
		distances[e.ID] = location.Distance(origin, location.Coordinate{
			Latitude:  e.Location.Latitude,
			Longitude: e.Location.Longitude,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distances[out[i].ID] < distances[out[j].ID]
	})
	return out, distances, true
}

// Mine keeps the events hosted by userID, earliest first.
func Mine(hosted []event.Event, userID string) []event.Event {
	out := make([]event.Event, 0, len(hosted))
	for _, e := range hosted {
		if e.HostID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func clone(batch []event.Event) []event.Event {
	out := make([]event.Event, len(batch))
	copy(out, batch)
	return out
}
