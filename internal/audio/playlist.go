package audio

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// PlaylistFormat is a playlist file format.
type PlaylistFormat int

const (
	// FormatM3U writes .m3u, optionally with #EXTINF lines.
	FormatM3U PlaylistFormat = iota
	// FormatPLS writes INI-style .pls.
	FormatPLS
	// FormatWPL writes Windows Media Player SMIL.
	FormatWPL
	// FormatZPL writes Zune SMIL with per-track metadata attributes.
	FormatZPL
)

// ParsePlaylistFormat maps a settings value to a format. Unknown values
// yield FormatM3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(name) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the format, with the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistEntry is one file in a playlist.
type PlaylistEntry struct {
	// Path is the file's location; only its base name is written.
	Path  string
	Title string

	// Duration in seconds, 0 when unknown.
	Duration float64
}

// Playlist describes the files of one release.
type Playlist struct {
	Title   string
	Artist  string
	Entries []PlaylistEntry
}

// PlaylistCreator renders playlists of placed files. Entries are written as
// base names, so the playlist belongs in the directory of its files.
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool
}

// NewPlaylistCreator creates a creator for format. extended only affects
// M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Encode writes pl to w.
func (p *PlaylistCreator) Encode(w io.Writer, pl Playlist) error {
	switch p.format {
	case FormatPLS:
		return encodePLS(w, pl)
	case FormatWPL, FormatZPL:
		return encodeSMIL(w, pl, p.format)
	default:
		return encodeM3U(w, pl, p.extended)
	}
}

// CreatePlaylist returns pl rendered as a string.
func (p *PlaylistCreator) CreatePlaylist(pl Playlist) string {
	var sb strings.Builder
	_ = p.Encode(&sb, pl)
	return sb.String()
}

func encodeM3U(w io.Writer, pl Playlist, extended bool) error {
	var sb strings.Builder
	if extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range pl.Entries {
		if extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration), pl.Artist, e.Title)
		}
		sb.WriteString(filepath.Base(e.Path))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func encodePLS(w io.Writer, pl Playlist) error {
	var sb strings.Builder
	sb.WriteString("[playlist]\n")
	for i, e := range pl.Entries {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", n, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", n, e.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", n, int(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\nVersion=2\n", len(pl.Entries))
	_, err := io.WriteString(w, sb.String())
	return err
}

type smil struct {
	XMLName xml.Name    `xml:"smil"`
	Head    smilHead    `xml:"head"`
	Media   []smilMedia `xml:"body>seq>media"`
}

type smilHead struct {
	Title string     `xml:"title"`
	Meta  []smilMeta `xml:"meta"`
}

type smilMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type smilMedia struct {
	Src         string `xml:"src,attr"`
	AlbumTitle  string `xml:"albumTitle,attr,omitempty"`
	AlbumArtist string `xml:"albumArtist,attr,omitempty"`
	TrackTitle  string `xml:"trackTitle,attr,omitempty"`
	TrackArtist string `xml:"trackArtist,attr,omitempty"`
	Duration    string `xml:"duration,attr,omitempty"`
}

// encodeSMIL writes the XML formats. ZPL adds generator metadata and
// per-track attributes, with durations in milliseconds.
func encodeSMIL(w io.Writer, pl Playlist, format PlaylistFormat) error {
	doc := smil{Head: smilHead{Title: pl.Title}}
	pi := `<?wpl version="1.0"?>`
	zune := format == FormatZPL
	if zune {
		pi = `<?zpl version="2.0"?>`
		doc.Head.Meta = []smilMeta{
			{Name: "Generator", Content: "bandcamper"},
			{Name: "ItemCount", Content: strconv.Itoa(len(pl.Entries))},
		}
	}
	for _, e := range pl.Entries {
		media := smilMedia{Src: filepath.Base(e.Path)}
		if zune {
			media.AlbumTitle = pl.Title
			media.AlbumArtist = pl.Artist
			media.TrackTitle = e.Title
			media.TrackArtist = pl.Artist
			media.Duration = strconv.FormatInt(int64(e.Duration*1000), 10)
		}
		doc.Media = append(doc.Media, media)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", pi, out)
	return err
}
