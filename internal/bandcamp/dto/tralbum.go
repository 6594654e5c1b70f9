// Package dto holds the JSON shapes embedded in release pages.
package dto

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// BandcampTime is a custom time type that handles Bandcamp's date format.
//
// Unparsable values decode to the zero time rather than failing the whole
// document.
type BandcampTime struct {
	time.Time
}

var dateFormats = []string{
	"02 Jan 2006 15:04:05 MST", // "01 Jan 2023 00:00:00 GMT"
	"2 Jan 2006 15:04:05 MST",  // "1 Jan 2023 00:00:00 GMT"
	time.RFC3339,
}

// UnmarshalJSON parses Bandcamp's date format: "01 Jan 2023 00:00:00 GMT"
func (bt *BandcampTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string
		bt.Time = time.Time{}
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, strings.TrimSpace(s)); err == nil {
			bt.Time = t
			return nil
		}
	}
	bt.Time = time.Time{}
	return nil
}

// Tralbum is the data-tralbum document of a release page.
type Tralbum struct {
	ID               int64       `json:"id"`
	ItemType         string      `json:"item_type"`
	Artist           string      `json:"artist"`
	ArtID            *int64      `json:"art_id"`
	FreeDownloadPage *string     `json:"freeDownloadPage"`
	Current          Current     `json:"current"`
	Tracks           []TrackInfo `json:"trackinfo"`
}

// Current describes the release itself.
type Current struct {
	Title       string        `json:"title"`
	ReleaseDate *BandcampTime `json:"release_date"`
	PublishDate *BandcampTime `json:"publish_date"`
}

// TrackInfo is one entry of the trackinfo array.
type TrackInfo struct {
	Title    string            `json:"title"`
	Number   *int              `json:"track_num"`
	Duration float64           `json:"duration"`
	File     map[string]string `json:"file"`
}

// Year returns the release year from the release date, then the publish
// date. It is empty when neither parses.
func (t *Tralbum) Year() string {
	for _, d := range []*BandcampTime{t.Current.ReleaseDate, t.Current.PublishDate} {
		if d != nil && !d.IsZero() {
			return d.Format("2006")
		}
	}
	return ""
}
