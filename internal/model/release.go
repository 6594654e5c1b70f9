package model

import "sort"

// ItemType distinguishes single-track releases from albums.
type ItemType string

const (
	ItemTypeTrack ItemType = "track"
	ItemTypeAlbum ItemType = "album"
)

// FormatID is one of the platform-defined audio encodings, e.g. "flac" or "mp3-320".
type FormatID string

// Release represents one catalog entry as described by its release page.
//
// A Release is created once from a fetched page and is not modified afterwards.
type Release struct {
	// ID is the platform item id, required by the email-download endpoint.
	ID int64

	// URL is the release page the data was extracted from.
	URL string

	Artist string

	// Title is the release title: the album title for albums, the track
	// title for singles.
	Title string

	ItemType ItemType

	// AlbumTitle is the "from album" label shown on single-track pages.
	// Empty for albums and for singles that do not belong to an album.
	AlbumTitle string

	// Year is the four-digit release year, empty when unknown.
	Year string

	Tracks []Track

	// AvailableFormats lists the encodings the page streams directly.
	AvailableFormats []FormatID

	// FreeDownloadPage is the URL of the free download page, empty if none.
	FreeDownloadPage string

	// EmailGated is set when downloading requires submitting an email address.
	EmailGated bool

	// CoverArtURL is the full-size artwork URL, empty if the page has none.
	CoverArtURL string
}

// IsAlbum reports whether the release is an album.
func (r *Release) IsAlbum() bool {
	return r.ItemType == ItemTypeAlbum
}

// Album returns the album name used for naming and tagging: the release
// title for albums, the "from album" label for singles.
func (r *Release) Album() string {
	if r.IsAlbum() {
		return r.Title
	}
	return r.AlbumTitle
}

// TrackTitles maps track numbers to titles. Tracks without a number are left out.
func (r *Release) TrackTitles() map[int]string {
	titles := make(map[int]string, len(r.Tracks))
	for _, t := range r.Tracks {
		if t.Number != nil {
			titles[*t.Number] = t.Title
		}
	}
	return titles
}

// Track is a single track of a release.
type Track struct {
	// Number is the track position, nil when the page does not provide one.
	Number *int

	Title string

	// Duration in seconds, zero when unknown.
	Duration float64

	// PreviewURL is the low-fidelity stream used by the fallback strategy.
	PreviewURL string
}

// HasPreview reports whether the track can be fetched by the fallback strategy.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// SortTracks orders tracks by number; tracks without a number keep their
// relative order after the numbered ones.
func SortTracks(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i].Number, tracks[j].Number
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
