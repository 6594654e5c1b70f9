package model

// DownloadOutcome is what one strategy execution leaves on disk.
type DownloadOutcome struct {
	// Paths are single files or directories holding an extracted archive.
	Paths []string

	// Skipped holds the per-format and per-track failures that did not
	// abort the release.
	Skipped []error

	// Tracks records the release track a file was fetched for, when the
	// strategy knows it (preview streams).
	Tracks map[string]Track
}

// AddTrackFile records a file fetched for a specific track.
func (o *DownloadOutcome) AddTrackFile(path string, t Track) {
	if o.Tracks == nil {
		o.Tracks = make(map[string]Track)
	}
	o.Paths = append(o.Paths, path)
	o.Tracks[path] = t
}

// Merge appends the paths, skips and track records of other.
func (o *DownloadOutcome) Merge(other DownloadOutcome) {
	o.Paths = append(o.Paths, other.Paths...)
	o.Skipped = append(o.Skipped, other.Skipped...)
	for p, t := range other.Tracks {
		if o.Tracks == nil {
			o.Tracks = make(map[string]Track)
		}
		o.Tracks[p] = t
	}
}

// PlacedFile is a downloaded file after it was renamed into its final location.
type PlacedFile struct {
	Path    string
	Audio   bool
	Context RenderContext
}
