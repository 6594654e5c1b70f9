package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned when no handler exists for a file type.
	ErrUnsupported = errors.New("unsupported audio format")
	// ErrMalformed is returned when a file of a known type cannot be parsed.
	ErrMalformed = errors.New("malformed audio file")
)

// Field is a writable metadata field.
type Field int

const (
	FieldArtist Field = iota
	FieldAlbum
	FieldYear
	FieldTitle
	FieldTrackNumber
)

func (f Field) String() string {
	switch f {
	case FieldArtist:
		return "artist"
	case FieldAlbum:
		return "album"
	case FieldYear:
		return "year"
	case FieldTitle:
		return "title"
	case FieldTrackNumber:
		return "track number"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Handler edits the tags of one open audio file.
//
// Setters only stage changes; Save writes them. Close must always be called.
type Handler interface {
	Supports(field Field) bool
	SetArtist(artist string)
	SetAlbum(album string)
	SetYear(year string)
	SetTitle(title string)
	SetTrackNumber(n int)
	Save() error
	Close() error
}

// Opener opens a tag handler for a file on disk.
type Opener func(path string) (Handler, error)

// Codecs maps lowercase file extensions (with dot) to openers.
type Codecs map[string]Opener

// DefaultCodecs returns the handlers for MP3 and FLAC files.
func DefaultCodecs() Codecs {
	return Codecs{
		".mp3":  openID3,
		".flac": openFLAC,
	}
}

// Open returns a handler for path, or ErrUnsupported for unknown extensions.
func (c Codecs) Open(path string) (Handler, error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := c[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return open(path)
}
