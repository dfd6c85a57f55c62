package departures

import (
	"time"

	"github.com/florianilch/tavla/internal/vasttrafik"
)

// clockLayout renders hour and minute.
const clockLayout = "15:04"

// localLayout accepts timestamps that carry no offset at all.
const localLayout = "2006-01-02T15:04:05.999999999"

// FormatClock renders an upstream timestamp as HH:MM in the offset embedded in
// the timestamp itself. No conversion to the system zone takes place.
func FormatClock(ts string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var localErr error
		t, localErr = time.Parse(localLayout, ts)
		if localErr != nil {
			return "", err
		}
	}
	return t.Format(clockLayout), nil
}

// formatField formats a timestamp and attributes failures to the named field.
func formatField(field, ts string) (string, error) {
	s, err := FormatClock(ts)
	if err != nil {
		return "", &vasttrafik.MalformedResponseError{Field: field, Err: err}
	}
	return s, nil
}
