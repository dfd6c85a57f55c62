package commands

import (
	"strings"
	"testing"

	"github.com/florianilch/tavla/internal/departures"
)

func TestFormatDepartures_Plain(t *testing.T) {
	bg := "#fcb813"
	deps := []departures.Departure{
		{Line: "6", Direction: "Östra Sjukhuset", Platform: "A", Time: "10:03", Planned: "10:00", BackgroundColor: &bg},
		{Line: "16", Direction: "Eketrägatan", Platform: "?", Time: "10:07", Planned: "10:07"},
		{Line: "55", Direction: "Johanneberg", Platform: "B", Time: "10:09", Planned: "10:09", IsCancelled: true},
	}

	got := formatDepartures("Chalmers, Göteborg", deps, false)
	want := strings.Join([]string{
		"Chalmers, Göteborg",
		"Linje 6 mot Östra Sjukhuset – Läge A – 10:03 (plan 10:00)",
		"Linje 16 mot Eketrägatan – Läge ? – 10:07",
		"Linje 55 mot Johanneberg – Läge B – 10:09 – INSTÄLLD",
		"",
	}, "\n")

	if got != want {
		t.Errorf("formatDepartures =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatDepartures_Empty(t *testing.T) {
	got := formatDepartures("Chalmers", nil, false)
	if !strings.Contains(got, "Inga avgångar") {
		t.Errorf("missing empty message: %q", got)
	}
}

func TestFormatDepartures_StyledKeepsContent(t *testing.T) {
	deps := []departures.Departure{
		{Line: "6", Direction: "Östra Sjukhuset", Platform: "A", Time: "10:03", Planned: "10:00"},
	}

	got := formatDepartures("Chalmers", deps, true)
	for _, want := range []string{"Östra Sjukhuset", "Läge A", "10:03", "10:00"} {
		if !strings.Contains(got, want) {
			t.Errorf("styled output lacks %q: %q", want, got)
		}
	}
}

func TestReadSecret(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"line", "s3cret\n", "s3cret", false},
		{"no newline", "s3cret", "s3cret", false},
		{"padded", "  s3cret \r\n", "s3cret", false},
		{"first line only", "s3cret\nrest\n", "s3cret", false},
		{"empty", "", "", true},
		{"blank", "   \n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecret(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readSecret: %v", err)
			}
			if got != tt.want {
				t.Errorf("readSecret = %q, want %q", got, tt.want)
			}
		})
	}
}
