package naming

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	ctx := map[string]string{
		"artist":       "Artist",
		"track_number": "7",
		"title":        "Song",
		"year":         "",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "plain", template: "{artist} - {title}", want: "Artist - Song"},
		{name: "zero padded", template: "{track_number:02d}", want: "07"},
		{name: "wider zero padded", template: "{track_number:03d}", want: "007"},
		{name: "space padded", template: "{track_number:3d}", want: "  7"},
		{name: "plain int", template: "{track_number:d}", want: "7"},
		{name: "string spec", template: "[{artist:8s}]", want: "[Artist  ]"},
		{name: "absent number stays empty", template: "{year:04d}", want: ""},
		{name: "unknown key", template: "{nope}x", want: "x"},
		{name: "escaped braces", template: "{{{artist}}}", want: "{Artist}"},
		{name: "no placeholders", template: "static", want: "static"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.template, ctx)
			if err != nil {
				t.Fatalf("Format(%q) error = %v", tt.template, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	templates := []string{
		"{artist",
		"artist}",
		"{}",
		"{track_number:x}",
		"{artist:05s}",
		"{a{b}}",
	}

	for _, tmpl := range templates {
		t.Run(tmpl, func(t *testing.T) {
			_, err := Format(tmpl, map[string]string{"artist": "A"})
			if !errors.Is(err, ErrTemplate) {
				t.Errorf("Format(%q) error = %v, want ErrTemplate", tmpl, err)
			}
		})
	}
}
