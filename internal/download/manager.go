package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/handiism/bandcamper/internal/audio"
	"github.com/handiism/bandcamper/internal/bandcamp"
	"github.com/handiism/bandcamper/internal/config"
	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/mailbox"
	"github.com/handiism/bandcamper/internal/metadata"
	"github.com/handiism/bandcamper/internal/model"
	"github.com/handiism/bandcamper/internal/naming"
	"github.com/handiism/bandcamper/internal/organize"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Progress is a snapshot of the batch counters.
type Progress struct {
	Releases     int32
	ReleasesDone int32
	FilesPlaced  int32

	// Written and Total describe the file currently being streamed.
	// Total is -1 when the server sent no length.
	Written int64
	Total   int64
}

type managerOptions struct {
	fs       afero.Fs
	logger   zerolog.Logger
	httpOpts []bchttp.Option
	hosts    bandcamp.HostResolver
	mailbox  mailbox.Provider
	prober   audio.Prober
	codecs   audio.Codecs
}

// Option configures a Manager.
type Option func(*managerOptions)

// WithFS replaces the destination filesystem.
func WithFS(fs afero.Fs) Option {
	return func(o *managerOptions) {
		o.fs = fs
	}
}

// WithLogger sets the diagnostic logger shared by every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithHTTPOptions passes options to the HTTP client, e.g. a test transport.
func WithHTTPOptions(opts ...bchttp.Option) Option {
	return func(o *managerOptions) {
		o.httpOpts = append(o.httpOpts, opts...)
	}
}

// WithHostResolver replaces the DNS lookups of the custom-domain check.
func WithHostResolver(h bandcamp.HostResolver) Option {
	return func(o *managerOptions) {
		o.hosts = h
	}
}

// WithMailboxProvider replaces the disposable mailbox provider.
func WithMailboxProvider(p mailbox.Provider) Option {
	return func(o *managerOptions) {
		o.mailbox = p
	}
}

// WithCodecs replaces the tag codecs used by the metadata writer.
func WithCodecs(c audio.Codecs) Option {
	return func(o *managerOptions) {
		o.codecs = c
	}
}

// Manager runs the acquisition pipeline over a batch of identifiers.
//
// Releases are processed one at a time. A failure is reported through the
// progress callback and recorded in the Report; it never stops the batch.
type Manager struct {
	settings  *config.Settings
	platform  *config.Platform
	fs        afero.Fs
	logger    zerolog.Logger
	naming    naming.Platform
	resolver  *bandcamp.Resolver
	extractor *bandcamp.Extractor
	engine    *Engine
	placer    *organize.Placer
	meta      *metadata.Extractor
	writer    *metadata.Writer
	playlist  *audio.PlaylistCreator

	releases     int32
	releasesDone int32
	filesPlaced  int32
	written      int64
	total        int64

	onProgress func(ProgressEvent)
}

// NewManager wires the pipeline from settings.
func NewManager(settings *config.Settings, platform *config.Platform, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	o := managerOptions{
		fs:     afero.NewOsFs(),
		logger: zerolog.Nop(),
		prober: audio.TagProber{},
		codecs: audio.DefaultCodecs(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	namingPlatform, err := naming.ParsePlatform(settings.Platform)
	if err != nil {
		return nil, err
	}

	client, err := bchttp.NewClient(bchttp.Config{
		UserAgent:     settings.UserAgent,
		Proxy:         settings.Proxy,
		Timeout:       settings.HTTPTimeout,
		MaxRetries:    settings.DownloadMaxRetries,
		RetryCooldown: settings.DownloadRetryCooldown,
	}, append([]bchttp.Option{bchttp.WithLogger(o.logger)}, o.httpOpts...)...)
	if err != nil {
		return nil, err
	}

	if o.mailbox == nil {
		o.mailbox = mailbox.NewOneSecMail(client, settings.MailboxAPI)
	}

	m := &Manager{
		settings:   settings,
		platform:   platform,
		fs:         o.fs,
		logger:     o.logger,
		naming:     namingPlatform,
		extractor:  bandcamp.NewExtractor(client),
		meta:       metadata.NewExtractor(client, o.logger),
		writer:     metadata.NewWriter(o.codecs, o.logger),
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		total:      -1,
		onProgress: onProgress,
	}

	resolverOpts := []bandcamp.ResolverOption{
		bandcamp.WithForceHTTPS(settings.ForceHTTPS),
		bandcamp.WithResolverLogger(o.logger),
	}
	if o.hosts != nil {
		resolverOpts = append(resolverOpts, bandcamp.WithHostResolver(o.hosts))
	}
	m.resolver = bandcamp.NewResolver(client, platform, resolverOpts...)

	m.engine = NewEngine(client, o.fs, platform,
		WithMailbox(o.mailbox),
		WithEngineLogger(o.logger),
		WithEmailOptions(EmailOptions{
			Timeout:      settings.EmailTimeout,
			PollInterval: settings.EmailPollInterval,
			Country:      settings.EmailCountry,
			Postcode:     settings.EmailPostcode,
		}),
		WithByteProgress(func(written, total int64) {
			atomic.StoreInt64(&m.written, written)
			atomic.StoreInt64(&m.total, total)
		}),
	)

	m.placer = organize.NewPlacer(o.fs, naming.Builder{
		Root:     settings.Destination,
		Platform: namingPlatform,
	}, o.prober, platform, organize.Options{
		AudioTemplate: settings.Output,
		ExtraTemplate: settings.OutputExtra,
		Logger:        o.logger,
	})

	return m, nil
}

// Progress returns the current counters.
func (m *Manager) Progress() Progress {
	return Progress{
		Releases:     atomic.LoadInt32(&m.releases),
		ReleasesDone: atomic.LoadInt32(&m.releasesDone),
		FilesPlaced:  atomic.LoadInt32(&m.filesPlaced),
		Written:      atomic.LoadInt64(&m.written),
		Total:        atomic.LoadInt64(&m.total),
	}
}

// Plan resolves identifiers into release URLs without downloading anything.
func (m *Manager) Plan(ctx context.Context, identifiers []string) *Report {
	report := &Report{}
	var targets bandcamp.Targets
	for _, id := range cleanIdentifiers(identifiers) {
		if ctx.Err() != nil {
			break
		}
		ir := IdentifierReport{Identifier: id}
		urls, err := m.resolve(ctx, id)
		ir.Err = err
		for _, u := range urls {
			if targets.Add(u) > 0 {
				ir.Releases = append(ir.Releases, ReleaseReport{URL: u})
			}
		}
		report.Identifiers = append(report.Identifiers, ir)
	}
	if ctx.Err() != nil {
		report.Interrupted = true
	}
	return report
}

// Run resolves and acquires every identifier, then returns the report.
//
// A release reached from several identifiers is processed once. When ctx
// ends, the release in progress is abandoned and the batch stops.
func (m *Manager) Run(ctx context.Context, identifiers []string) *Report {
	report := &Report{}
	var targets bandcamp.Targets

	for _, id := range cleanIdentifiers(identifiers) {
		if ctx.Err() != nil {
			break
		}
		ir := IdentifierReport{Identifier: id}

		urls, err := m.resolve(ctx, id)
		if err != nil {
			ir.Err = err
			report.Identifiers = append(report.Identifiers, ir)
			continue
		}

		var fresh []string
		for _, u := range urls {
			if targets.Add(u) > 0 {
				fresh = append(fresh, u)
			} else {
				m.progress(LevelVerbose, "Already processed %s", u)
			}
		}
		atomic.AddInt32(&m.releases, int32(len(fresh)))

		for _, u := range fresh {
			if ctx.Err() != nil {
				break
			}
			rr := m.processRelease(ctx, u)
			atomic.AddInt32(&m.releasesDone, 1)
			report.add(rr)
			ir.Releases = append(ir.Releases, rr)
		}
		report.Identifiers = append(report.Identifiers, ir)
	}

	if err := ctx.Err(); err != nil {
		report.Interrupted = true
		m.progress(LevelWarning, "Interrupted: %v", err)
	}
	return report
}

func cleanIdentifiers(identifiers []string) []string {
	var out []string
	for _, id := range identifiers {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (m *Manager) resolve(ctx context.Context, id string) ([]string, error) {
	m.progress(LevelVerbose, "Resolving %s", id)
	urls, err := m.resolver.Resolve(ctx, id)
	switch {
	case err == nil:
		m.progress(LevelInfo, "%s: %d release(s)", id, len(urls))
	case errors.Is(err, bandcamp.ErrInvalidSource):
		m.progress(LevelError, "%s: %v", id, err)
	case errors.Is(err, bandcamp.ErrNotFound):
		m.progress(LevelWarning, "%s: artist not found", id)
	case errors.Is(err, bandcamp.ErrNoReleases):
		m.progress(LevelWarning, "%s: no releases found", id)
	default:
		m.progress(LevelWarning, "%s: %v", id, err)
	}
	return urls, err
}

func (m *Manager) processRelease(ctx context.Context, url string) ReleaseReport {
	rr := ReleaseReport{URL: url}

	release, err := m.extractor.Fetch(ctx, url)
	if err != nil {
		rr.Err = err
		if errors.Is(err, bandcamp.ErrNotFound) {
			m.progress(LevelWarning, "Release not found: %s", url)
		} else {
			m.progress(LevelWarning, "Skipping %s: %v", url, err)
		}
		return rr
	}
	rr.Artist, rr.Title = release.Artist, release.Title
	m.progress(LevelInfo, "Found release: %s - %s (%d tracks)", release.Artist, release.Title, len(release.Tracks))

	rr.Strategy = SelectStrategy(release, m.settings.Fallback || m.wantsFallbackFormat())
	outcome, err := m.engine.Acquire(ctx, Request{
		Release:       release,
		Formats:       m.settings.FormatIDs(),
		AllowFallback: m.settings.Fallback,
		Dir:           m.settings.Destination,
	})
	if err != nil {
		rr.Err = err
		level := LevelWarning
		if errors.Is(err, ErrEmailRejected) || errors.Is(err, ErrEmailTimeout) {
			level = LevelError
		}
		m.progress(level, "%s - %s: %v", release.Artist, release.Title, err)
		return rr
	}
	for _, skip := range outcome.Skipped {
		m.progress(LevelWarning, "%s - %s: %v", release.Artist, release.Title, skip)
	}
	rr.Skipped = outcome.Skipped

	base := model.RenderContext{
		model.KeyArtist: release.Artist,
		model.KeyAlbum:  release.Album(),
		model.KeyYear:   release.Year,
		model.KeyURL:    release.URL,
	}
	placed, errs := m.placer.Place(outcome, base, release.Tracks)
	for _, err := range errs {
		m.progress(LevelWarning, "Could not place file: %v", err)
	}
	atomic.AddInt32(&m.filesPlaced, int32(len(placed)))
	for _, f := range placed {
		rr.Files = append(rr.Files, f.Path)
		m.progress(LevelVerbose, "Saved %s", f.Path)
	}
	if len(placed) == 0 {
		m.progress(LevelWarning, "%s - %s: no files downloaded", release.Artist, release.Title)
		return rr
	}

	if m.settings.ModifyTags {
		rr.Tags = m.writeTags(ctx, url, placed)
	}
	if m.settings.SaveCoverArt {
		m.saveCover(ctx, release, placed)
	}
	if m.settings.CreatePlaylist {
		if path, err := m.writePlaylist(release, placed); err != nil {
			m.progress(LevelWarning, "Could not create playlist: %v", err)
		} else if path != "" {
			m.progress(LevelVerbose, "Created playlist %s", path)
		}
	}

	m.progress(LevelSuccess, "Downloaded %s - %s", release.Artist, release.Title)
	return rr
}

func (m *Manager) wantsFallbackFormat() bool {
	for _, f := range m.settings.FormatIDs() {
		if f == m.platform.FallbackFormat {
			return true
		}
	}
	return false
}

func (m *Manager) writeTags(ctx context.Context, url string, placed []model.PlacedFile) metadata.Tally {
	var files []string
	for _, f := range placed {
		if f.Audio {
			files = append(files, f.Path)
		}
	}
	if len(files) == 0 {
		return metadata.Tally{}
	}

	meta, err := m.meta.Extract(ctx, url)
	if err != nil {
		m.progress(LevelWarning, "Could not extract metadata from %s: %v", url, err)
		return metadata.Tally{Failed: len(files)}
	}

	tally := m.writer.Write(files, meta, func(r metadata.FileResult) {
		switch r.Outcome {
		case metadata.Written:
			m.progress(LevelVerbose, "Wrote tags to %s", filepath.Base(r.Path))
		case metadata.Skipped:
			m.progress(LevelWarning, "Unsupported file format for %s", filepath.Base(r.Path))
		case metadata.Failed:
			m.progress(LevelWarning, "Error writing tags to %s: %v", filepath.Base(r.Path), r.Err)
		}
	})
	m.progress(LevelInfo, "Tags written to %d of %d file(s)", tally.Written, len(files))
	return tally
}

func (m *Manager) saveCover(ctx context.Context, release *model.Release, placed []model.PlacedFile) {
	if release.CoverArtURL == "" {
		m.progress(LevelVerbose, "%s - %s has no cover art", release.Artist, release.Title)
		return
	}
	path, written, err := m.engine.SaveCover(ctx, release.CoverArtURL, placed, m.settings.CoverArtMaxSize)
	switch {
	case err != nil:
		m.progress(LevelWarning, "Could not save cover art: %v", err)
	case written:
		m.progress(LevelVerbose, "Saved cover art to %s", path)
	default:
		m.progress(LevelVerbose, "Cover art already exists at %s", path)
	}
}

func (m *Manager) progress(level ProgressLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	m.logger.Debug().Stringer("level", level).Msg(msg)
	if m.onProgress != nil {
		m.onProgress(ProgressEvent{Message: msg, Level: level})
	}
}
