package departures

import (
	"github.com/florianilch/tavla/internal/vasttrafik"
)

// unknownPlatform is shown when a stop point names no platform.
const unknownPlatform = "?"

// Normalize filters raw departures and maps the survivors, preserving upstream
// order. Incomplete records are dropped silently; a surviving record with an
// unusable timestamp fails the whole list.
func Normalize(raw []vasttrafik.Departure) ([]Departure, error) {
	mappable := Select(Filter(raw), mappableFilter)

	deps := make([]Departure, 0, len(mappable))
	for _, d := range mappable {
		dep, err := mapDeparture(d)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// mapDeparture converts a record that passed both filters.
func mapDeparture(d vasttrafik.Departure) (Departure, error) {
	if d.PlannedTime == nil {
		return Departure{}, &vasttrafik.MalformedResponseError{Field: "plannedTime"}
	}

	planned, err := formatField("plannedTime", *d.PlannedTime)
	if err != nil {
		return Departure{}, err
	}

	field, ts := displayedTime(d)
	displayed := planned
	if field != "plannedTime" {
		displayed, err = formatField(field, ts)
		if err != nil {
			return Departure{}, err
		}
	}

	sj := d.ServiceJourney
	platform := unknownPlatform
	if d.StopPoint.Platform != nil {
		platform = *d.StopPoint.Platform
	}

	return Departure{
		Line:            sj.Line.ShortName,
		Direction:       direction(sj),
		Platform:        platform,
		Time:            displayed,
		Planned:         planned,
		IsCancelled:     d.IsCancelled,
		BackgroundColor: sj.Line.BackgroundColor,
		ForegroundColor: sj.Line.ForegroundColor,
	}, nil
}

// present treats empty timestamps like absent ones.
func present(ts *string) bool {
	return ts != nil && *ts != ""
}

// displayedTime picks the first present of estimated, estimated-otherwise-planned
// and planned time, returning the chosen field name with its value.
func displayedTime(d vasttrafik.Departure) (string, string) {
	switch {
	case present(d.EstimatedTime):
		return "estimatedTime", *d.EstimatedTime
	case present(d.EstimatedOtherwisePlannedTime):
		return "estimatedOtherwisePlannedTime", *d.EstimatedOtherwisePlannedTime
	default:
		return "plannedTime", *d.PlannedTime
	}
}

func direction(sj *vasttrafik.ServiceJourney) string {
	if sj.DirectionDetails != nil && sj.DirectionDetails.ShortDirection != "" {
		return sj.DirectionDetails.ShortDirection
	}
	return sj.Direction
}
