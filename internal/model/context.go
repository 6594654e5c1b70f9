package model

import "strings"

// Placeholder names available to naming templates.
const (
	KeyArtist      = "artist"
	KeyAlbum       = "album"
	KeyYear        = "year"
	KeyTrackNumber = "track_number"
	KeyTitle       = "title"
	KeyURL         = "bandcamp_url"
	KeyExt         = "ext"
	KeyFilename    = "filename"
)

// RenderContext maps template placeholders to values for one file.
type RenderContext map[string]string

// Clone returns an independent copy of c.
func (c RenderContext) Clone() RenderContext {
	out := make(RenderContext, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// WithoutSeparators returns a copy of c in which every separator found in a
// value is replaced with a hyphen.
func (c RenderContext) WithoutSeparators(separators ...string) RenderContext {
	out := c.Clone()
	for k, v := range out {
		for _, sep := range separators {
			v = strings.ReplaceAll(v, sep, "-")
		}
		out[k] = v
	}
	return out
}
