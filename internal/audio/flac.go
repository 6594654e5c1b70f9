package audio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

const flacVendor = "bandcamper"

// flacHandler edits the Vorbis comment block of a FLAC file. Comments it
// does not set are preserved.
type flacHandler struct {
	path    string
	file    *flac.File
	comment *flacvorbis.MetaDataBlockVorbisComment
	index   int // position of the comment block in file.Meta, -1 if absent
	errs    []error
}

// parseFLAC parses path. The parser indexes into the frame data without a
// length check, so a stream with metadata but no frames panics.
func parseFLAC(path string) (f *flac.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	return flac.ParseFile(path)
}

func openFLAC(path string) (Handler, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	h := &flacHandler{path: path, file: f, index: -1}
	for i, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vorbis comment: %w", err)
		}
		h.comment = cmt
		h.index = i
		break
	}
	if h.comment == nil {
		h.comment = flacvorbis.New()
		h.comment.Vendor = flacVendor
	}
	return h, nil
}

func (h *flacHandler) Supports(Field) bool { return true }

func (h *flacHandler) set(key, value string) {
	kept := h.comment.Comments[:0]
	for _, c := range h.comment.Comments {
		k, _, _ := strings.Cut(c, "=")
		if !strings.EqualFold(k, key) {
			kept = append(kept, c)
		}
	}
	h.comment.Comments = kept
	if err := h.comment.Add(key, value); err != nil {
		h.errs = append(h.errs, fmt.Errorf("set %s: %w", key, err))
	}
}

// SetArtist updates ARTIST and ALBUMARTIST.
func (h *flacHandler) SetArtist(artist string) {
	h.set(flacvorbis.FIELD_ARTIST, artist)
	h.set("ALBUMARTIST", artist)
}

func (h *flacHandler) SetAlbum(album string) { h.set(flacvorbis.FIELD_ALBUM, album) }

func (h *flacHandler) SetYear(year string) { h.set(flacvorbis.FIELD_DATE, year) }

func (h *flacHandler) SetTitle(title string) { h.set(flacvorbis.FIELD_TITLE, title) }

func (h *flacHandler) SetTrackNumber(n int) {
	h.set(flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(n))
}

// Save writes the staged comments. Values the comment block rejected are
// reported here.
func (h *flacHandler) Save() error {
	if err := errors.Join(h.errs...); err != nil {
		return err
	}
	block := h.comment.Marshal()
	if h.index >= 0 {
		h.file.Meta[h.index] = &block
	} else {
		h.file.Meta = append(h.file.Meta, &block)
		h.index = len(h.file.Meta) - 1
	}
	return h.file.Save(h.path)
}

func (h *flacHandler) Close() error { return nil }
