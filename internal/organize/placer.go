package organize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/handiism/bandcamper/internal/audio"
	"github.com/handiism/bandcamper/internal/config"
	ioutils "github.com/handiism/bandcamper/internal/io"
	"github.com/handiism/bandcamper/internal/log"
	"github.com/handiism/bandcamper/internal/model"
	"github.com/handiism/bandcamper/internal/naming"
)

// Options selects the templates a Placer renders.
type Options struct {
	// AudioTemplate names files with a recognised audio extension.
	AudioTemplate string

	// ExtraTemplate names every other file; it sees the original file name
	// under the "filename" placeholder.
	ExtraTemplate string

	Logger zerolog.Logger
}

// Placer moves a DownloadOutcome into its final location.
type Placer struct {
	fs       afero.Fs
	builder  naming.Builder
	prober   audio.Prober
	platform *config.Platform
	opts     Options
}

// NewPlacer creates a Placer. prober may be nil, in which case embedded
// tags are never consulted.
func NewPlacer(fs afero.Fs, builder naming.Builder, prober audio.Prober, platform *config.Platform, opts Options) *Placer {
	return &Placer{
		fs:       fs,
		builder:  builder,
		prober:   prober,
		platform: platform,
		opts:     opts,
	}
}

// Place renders and moves every file of outcome.
//
// base carries the release-level placeholders (artist, album, year, source
// URL) and is never modified. Directory entries are expanded into their
// immediate children and removed once empty. A file that cannot be placed
// is reported in the returned errors and left where it was.
func (p *Placer) Place(outcome model.DownloadOutcome, base model.RenderContext, tracks []model.Track) ([]model.PlacedFile, []error) {
	var (
		placed []model.PlacedFile
		errs   []error
	)

	for _, entry := range outcome.Paths {
		info, err := p.fs.Stat(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", entry, err))
			continue
		}

		if !info.IsDir() {
			f, err := p.placeFile(entry, base, outcome.Tracks, tracks)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			placed = append(placed, f)
			continue
		}

		children, err := afero.ReadDir(p.fs, entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", entry, err))
			continue
		}
		for _, child := range children {
			if child.IsDir() {
				continue
			}
			f, err := p.placeFile(filepath.Join(entry, child.Name()), base, outcome.Tracks, tracks)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			placed = append(placed, f)
		}

		if _, err := ioutils.RemoveIfEmpty(p.fs, entry); err != nil {
			p.opts.Logger.Warn().Func(log.Flaw(err)).Str("dir", entry).Msg("Failed to remove download directory")
		}
	}

	return placed, errs
}

func (p *Placer) placeFile(
	src string,
	base model.RenderContext,
	known map[string]model.Track,
	tracks []model.Track,
) (model.PlacedFile, error) {
	ext := filepath.Ext(src)
	ctx := base.Clone()
	audioFile := p.platform.IsAudioExt(ext)

	template := p.opts.ExtraTemplate
	if audioFile {
		template = p.opts.AudioTemplate
		p.fillTrack(ctx, src, known, tracks)
		ctx[model.KeyExt] = ext
	} else {
		ctx[model.KeyFilename] = filepath.Base(src)
		ctx[model.KeyExt] = ext
	}

	dst, err := p.builder.Build(template, ctx)
	if err != nil {
		return model.PlacedFile{}, fmt.Errorf("render path for %s: %w", filepath.Base(src), err)
	}
	if err := ioutils.MoveFile(p.fs, src, dst); err != nil {
		return model.PlacedFile{}, fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}

	p.opts.Logger.Debug().Str("from", src).Str("to", dst).Msg("Placed file")
	return model.PlacedFile{Path: dst, Audio: audioFile, Context: ctx}, nil
}

var leadingNumber = regexp.MustCompile(`\d+`)

// fillTrack sets the track number and title of an audio file. Sources are
// tried in order: the track the strategy fetched the file for, tags already
// embedded in the file, the first digit run of the file name looked up in
// the release track list, and finally the bare file name.
func (p *Placer) fillTrack(ctx model.RenderContext, src string, known map[string]model.Track, tracks []model.Track) {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	if t, ok := known[src]; ok {
		setTrack(ctx, t.Number, t.Title, stem)
		return
	}

	if p.prober != nil {
		probed, err := p.prober.Probe(p.fs, src)
		if err != nil {
			p.opts.Logger.Debug().Err(err).Str("path", src).Msg("Could not read embedded tags")
		}
		if err == nil && probed.TrackNumber > 0 && probed.Title != "" {
			n := probed.TrackNumber
			setTrack(ctx, &n, probed.Title, stem)
			return
		}
	}

	if run := leadingNumber.FindString(stem); run != "" {
		if n, err := strconv.Atoi(run); err == nil {
			for _, t := range tracks {
				if t.Number != nil && *t.Number == n {
					setTrack(ctx, t.Number, t.Title, stem)
					return
				}
			}
		}
	}

	setTrack(ctx, nil, "", stem)
}

// setTrack fills the track placeholders. An unknown number renders empty.
func setTrack(ctx model.RenderContext, number *int, title, stem string) {
	ctx[model.KeyTrackNumber] = ""
	if number != nil {
		ctx[model.KeyTrackNumber] = strconv.Itoa(*number)
	}
	if title == "" {
		title = stem
	}
	ctx[model.KeyTitle] = title
}
