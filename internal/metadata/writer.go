package metadata

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handiism/bandcamper/internal/audio"
	"github.com/handiism/bandcamper/internal/log"
	"github.com/handiism/bandcamper/internal/model"
)

// Outcome is what happened to one file.
type Outcome int

const (
	Written Outcome = iota
	Failed
	Skipped
)

// FileResult reports the tagging of one file. Err is nil for Written.
type FileResult struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Tally counts the outcomes of a Write call.
type Tally struct {
	Written int
	Failed  int
	Skipped int
}

func (t *Tally) add(o Outcome) {
	switch o {
	case Written:
		t.Written++
	case Failed:
		t.Failed++
	case Skipped:
		t.Skipped++
	}
}

// Writer writes AlbumMetadata into audio files.
type Writer struct {
	codecs audio.Codecs
	logger zerolog.Logger
}

// NewWriter creates a Writer over the given tag codecs.
func NewWriter(codecs audio.Codecs, logger zerolog.Logger) *Writer {
	return &Writer{codecs: codecs, logger: logger}
}

// Write tags every file with meta and returns the tally.
//
// Files with an unsupported extension are skipped. A failure on one file
// is counted and reported through notify; it never stops the others.
// notify may be nil.
func (w *Writer) Write(files []string, meta *model.AlbumMetadata, notify func(FileResult)) Tally {
	var tally Tally
	for _, path := range files {
		res := FileResult{Path: path, Outcome: Written}
		if err := w.writeFile(path, meta); err != nil {
			res.Err = err
			res.Outcome = Failed
			if errors.Is(err, audio.ErrUnsupported) {
				res.Outcome = Skipped
			}
			w.logger.Debug().Err(err).Str("path", path).Msg("Tags not written")
		}
		tally.add(res.Outcome)
		if notify != nil {
			notify(res)
		}
	}
	return tally
}

func (w *Writer) writeFile(path string, meta *model.AlbumMetadata) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Func(log.Panic(r)).Str("path", path).Msg("Recovered from panic while tagging")
			err = fmt.Errorf("%w: tagging %s panicked: %v", audio.ErrMalformed, path, r)
		}
	}()

	h, err := w.codecs.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if meta.Artist != "" && h.Supports(audio.FieldArtist) {
		h.SetArtist(meta.Artist)
	}
	if meta.Album != "" && h.Supports(audio.FieldAlbum) {
		h.SetAlbum(meta.Album)
	}
	if meta.Year != "" && h.Supports(audio.FieldYear) {
		h.SetYear(meta.Year)
	}

	if track, ok := MatchTrack(path, meta.Tracks); ok {
		if track.Title != "" && h.Supports(audio.FieldTitle) {
			h.SetTitle(track.Title)
		}
		if track.Number > 0 && h.Supports(audio.FieldTrackNumber) {
			h.SetTrackNumber(track.Number)
		}
	}

	if err := h.Save(); err != nil {
		return fmt.Errorf("save tags of %s: %w", path, err)
	}
	return nil
}
