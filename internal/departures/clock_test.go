package departures

import "testing"

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "utc", input: "2024-06-15T08:07:00Z", want: "08:07"},
		{name: "offset preserved", input: "2024-06-15T08:07:00+02:00", want: "08:07"},
		{name: "negative offset", input: "2024-06-15T23:59:00-05:00", want: "23:59"},
		{name: "fractional seconds", input: "2024-06-15T08:07:59.999+01:00", want: "08:07"},
		{name: "no offset", input: "2024-06-15T08:07:00", want: "08:07"},
		{name: "date only", input: "2024-06-15", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatClock(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
