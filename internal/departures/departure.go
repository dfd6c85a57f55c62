// Package departures turns raw Västtrafik departures into a display-ready list
// and runs the token + fetch cycle behind a departure board.
package departures

// Departure is one normalized departure as shown on the board.
type Departure struct {
	Line      string `json:"line"`
	Direction string `json:"direction"`
	// Platform is "?" when upstream reports none.
	Platform string `json:"platform"`
	// Time is the displayed departure time, estimated when known.
	Time    string `json:"time"`
	Planned string `json:"planned"`

	IsCancelled bool `json:"isCancelled"`

	// Colours are passed through as provided and may be nil.
	BackgroundColor *string `json:"bg"`
	ForegroundColor *string `json:"fg"`
}

// Delayed reports whether the displayed time differs from the timetable.
func (d Departure) Delayed() bool {
	return d.Planned != "" && d.Time != d.Planned
}
