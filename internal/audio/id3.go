package audio

import (
	"strconv"

	"github.com/bogem/id3v2"
)

// id3Handler writes ID3v2 frames to MP3 files.
type id3Handler struct {
	tag *id3v2.Tag
}

func openID3(path string) (Handler, error) {
	// Files without a tag parse into an empty one
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	return &id3Handler{tag: tag}, nil
}

func (h *id3Handler) Supports(Field) bool { return true }

// SetArtist updates TPE1 and TPE2 (album artist).
func (h *id3Handler) SetArtist(artist string) {
	h.tag.SetArtist(artist)
	h.tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, artist)
}

func (h *id3Handler) SetAlbum(album string) { h.tag.SetAlbum(album) }

func (h *id3Handler) SetYear(year string) { h.tag.SetYear(year) }

func (h *id3Handler) SetTitle(title string) { h.tag.SetTitle(title) }

func (h *id3Handler) SetTrackNumber(n int) {
	h.tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(n))
}

func (h *id3Handler) Save() error { return h.tag.Save() }

func (h *id3Handler) Close() error { return h.tag.Close() }
