package model

// AlbumMetadata is the tag-oriented description of a release page.
type AlbumMetadata struct {
	Artist    string
	Album     string
	Year      string
	Tracks    []TrackInfo
	SourceURL string
}

// TrackInfo is one row of a release's track listing.
type TrackInfo struct {
	// Number is zero when the row has no usable number.
	Number   int
	Title    string
	Duration string
}
