package bandcamp

import "errors"

var (
	// ErrInvalidSource is returned for identifiers that are neither an artist
	// subdomain nor a platform or custom-domain URL.
	ErrInvalidSource = errors.New("not a valid Bandcamp URL or subdomain")

	// ErrNotFound is returned when the artist or release page answers 404.
	ErrNotFound = errors.New("not found")

	// ErrNoReleases is returned when an artist page lists no releases.
	//
	// This typically occurs when:
	//   - The URL is not a valid Bandcamp artist/music page
	//   - The artist has no published albums or tracks
	//   - The HTML structure has changed unexpectedly
	ErrNoReleases = errors.New("no releases found")

	// ErrParse is returned when a page lacks its embedded data.
	ErrParse = errors.New("failed to parse page")
)
