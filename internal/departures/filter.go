package departures

import "github.com/florianilch/tavla/internal/vasttrafik"

// Predicate decides whether a raw departure is kept.
type Predicate func(vasttrafik.Departure) bool

// HasServiceJourney keeps journey-based records.
func HasServiceJourney(d vasttrafik.Departure) bool {
	return d.ServiceJourney != nil
}

// HasLine keeps records whose journey names a line.
// Records without a journey are rejected as well.
func HasLine(d vasttrafik.Departure) bool {
	return d.ServiceJourney != nil && d.ServiceJourney.Line != nil
}

// HasStopPoint keeps records that carry a stop point.
func HasStopPoint(d vasttrafik.Departure) bool {
	return d.StopPoint != nil
}

// All combines predicates; a record is kept only if every predicate holds.
func All(preds ...Predicate) Predicate {
	return func(d vasttrafik.Departure) bool {
		for _, p := range preds {
			if !p(d) {
				return false
			}
		}
		return true
	}
}

var (
	// journeyFilter is the first pass applied to every fetched result list.
	journeyFilter = All(HasServiceJourney, HasLine)
	// mappableFilter is the second pass applied right before mapping.
	mappableFilter = All(HasStopPoint)
)

// Select returns the records satisfying keep, preserving their order.
func Select(raw []vasttrafik.Departure, keep Predicate) []vasttrafik.Departure {
	selected := make([]vasttrafik.Departure, 0, len(raw))
	for _, d := range raw {
		if keep(d) {
			selected = append(selected, d)
		}
	}
	return selected
}

// Filter drops records without a service journey or without a line.
func Filter(raw []vasttrafik.Departure) []vasttrafik.Departure {
	return Select(raw, journeyFilter)
}
