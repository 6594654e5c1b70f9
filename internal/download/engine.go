package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/handiism/bandcamper/internal/config"
	bchttp "github.com/handiism/bandcamper/internal/http"
	ioutils "github.com/handiism/bandcamper/internal/io"
	"github.com/handiism/bandcamper/internal/log"
	"github.com/handiism/bandcamper/internal/mailbox"
	"github.com/handiism/bandcamper/internal/model"
	"github.com/handiism/bandcamper/internal/naming"
)

// Strategy is the way a release is acquired.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyFree
	StrategyEmail
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyFree:
		return "free download"
	case StrategyEmail:
		return "email download"
	case StrategyFallback:
		return "preview streams"
	default:
		return "none"
	}
}

// SelectStrategy picks the strategy for a release. A free download page wins
// over email gating; preview streams are used only when allowFallback is set.
func SelectStrategy(release *model.Release, allowFallback bool) Strategy {
	switch {
	case release.FreeDownloadPage != "":
		return StrategyFree
	case release.EmailGated:
		return StrategyEmail
	case allowFallback:
		return StrategyFallback
	default:
		return StrategyNone
	}
}

// EmailOptions configures the email-gated strategy.
type EmailOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	Country      string
	Postcode     string
}

// Request asks the Engine to acquire one release.
type Request struct {
	Release *model.Release

	// Formats are the requested encodings. Requesting the platform's
	// fallback format also fetches the preview streams.
	Formats []model.FormatID

	// AllowFallback permits preview streams when nothing else is offered.
	AllowFallback bool

	// Dir receives the downloaded artifacts.
	Dir string
}

// Engine runs the download strategies.
type Engine struct {
	client   *bchttp.Client
	fs       afero.Fs
	platform *config.Platform
	mailbox  mailbox.Provider
	images   *ioutils.ImageService
	email    EmailOptions
	logger   zerolog.Logger
	onBytes  func(written, total int64)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMailbox replaces the disposable mailbox provider.
func WithMailbox(p mailbox.Provider) EngineOption {
	return func(e *Engine) {
		e.mailbox = p
	}
}

// WithEmailOptions sets the email-gated strategy parameters.
func WithEmailOptions(o EmailOptions) EngineOption {
	return func(e *Engine) {
		e.email = o
	}
}

// WithEngineLogger sets the diagnostic logger.
func WithEngineLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithByteProgress registers a callback fed with the bytes written by
// every streamed download.
func WithByteProgress(fn func(written, total int64)) EngineOption {
	return func(e *Engine) {
		e.onBytes = fn
	}
}

// NewEngine creates an Engine. Without WithMailbox, mailboxes are created
// on 1secmail through the client's transport.
func NewEngine(client *bchttp.Client, fs afero.Fs, platform *config.Platform, opts ...EngineOption) *Engine {
	e := &Engine{
		client:   client,
		fs:       fs,
		platform: platform,
		images:   ioutils.NewImageService(),
		email: EmailOptions{
			Timeout:      60 * time.Second,
			PollInterval: time.Second,
			Country:      "US",
			Postcode:     "0",
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.mailbox == nil {
		e.mailbox = mailbox.NewOneSecMail(client, mailbox.DefaultOneSecMailAPI)
	}
	return e
}

// Acquire downloads a release with the first applicable strategy.
//
// Per-format and per-track failures are collected in the outcome's Skipped
// list. The returned error is set only when the release as a whole failed:
// no strategy applies, the email request was rejected or timed out, or the
// download page could not be read.
func (e *Engine) Acquire(ctx context.Context, req Request) (model.DownloadOutcome, error) {
	release := req.Release
	wantPreview := lo.Contains(req.Formats, e.platform.FallbackFormat)
	official := lo.Without(req.Formats, e.platform.FallbackFormat)

	var out model.DownloadOutcome
	strategy := SelectStrategy(release, req.AllowFallback || wantPreview)
	e.logger.Debug().Str("url", release.URL).Stringer("strategy", strategy).Msg("Selected download strategy")

	switch strategy {
	case StrategyFree:
		o, err := e.freeDownload(ctx, release, release.FreeDownloadPage, official, req.Dir)
		if err != nil {
			return out, err
		}
		out = o
	case StrategyEmail:
		page, err := e.requestByEmail(ctx, release)
		if err != nil {
			return out, err
		}
		o, err := e.freeDownload(ctx, release, page, official, req.Dir)
		if err != nil {
			return out, err
		}
		out = o
	case StrategyFallback:
		return e.previews(ctx, release, req.Dir), nil
	default:
		return out, ErrNoFreeDownload
	}

	if wantPreview {
		out.Merge(e.previews(ctx, release, req.Dir))
	}
	return out, nil
}

// freeDownload fetches the formats offered on a free download page.
func (e *Engine) freeDownload(
	ctx context.Context,
	release *model.Release,
	pageURL string,
	formats []model.FormatID,
	dir string,
) (model.DownloadOutcome, error) {
	var out model.DownloadOutcome

	resp, err := e.client.Get(ctx, pageURL)
	if err != nil {
		return out, fmt.Errorf("fetch download page: %w", err)
	}
	descriptors, err := ParseDownloadPage(resp.Text())
	if err != nil {
		return out, err
	}

	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		d, ok := descriptors[format]
		if !ok {
			out.Skipped = append(out.Skipped, fmt.Errorf("%w: %s", ErrFormatNotFound, format))
			continue
		}

		link, err := e.resolveDownload(ctx, format, d)
		if err != nil {
			out.Skipped = append(out.Skipped, err)
			continue
		}

		label := ""
		if release.IsAlbum() {
			label = string(format) + ".zip"
		}
		path, err := e.fetchArtifact(ctx, link, dir, label)
		if err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("%w: %s: %w", ErrFormatErrored, format, err))
			continue
		}
		out.Paths = append(out.Paths, path)
	}
	return out, nil
}

// fetchArtifact streams link to a randomly named file in dir. A zip archive
// is extracted into a directory named after the file's stem and removed;
// the directory is returned instead.
func (e *Engine) fetchArtifact(ctx context.Context, link, dir, label string) (string, error) {
	stem := uuid.NewString()
	path, err := e.client.DownloadFile(ctx, e.fs, link, dir, stem, label, e.onBytes)
	if err != nil {
		return "", err
	}

	isZip, err := ioutils.IsZip(e.fs, path)
	if err != nil {
		e.discard(path)
		return "", err
	}
	if !isZip {
		return path, nil
	}

	dest := filepath.Join(dir, stem)
	if _, err := ioutils.ExtractZip(e.fs, path, dest); err != nil {
		e.logger.Error().Func(log.Flaw(err)).Str("archive", path).Msg("Failed to extract archive")
		e.discard(dest, path)
		return "", err
	}
	if err := e.fs.Remove(path); err != nil {
		e.logger.Warn().Err(err).Str("archive", path).Msg("Failed to remove extracted archive")
	}
	return dest, nil
}

// discard removes temporary artifacts of a failed download.
func (e *Engine) discard(paths ...string) {
	for _, p := range paths {
		if err := e.fs.RemoveAll(p); err != nil {
			e.logger.Warn().Err(err).Str("path", p).Msg("Failed to remove temporary artifact")
		}
	}
}

// previews streams the preview of every track that has one. Tracks without
// a preview are skipped silently.
func (e *Engine) previews(ctx context.Context, release *model.Release, dir string) model.DownloadOutcome {
	var out model.DownloadOutcome
	for _, t := range release.Tracks {
		if !t.HasPreview() {
			continue
		}
		if err := ctx.Err(); err != nil {
			out.Skipped = append(out.Skipped, err)
			break
		}

		number := "01"
		if t.Number != nil {
			number = fmt.Sprintf("%02d", *t.Number)
		}
		path, err := e.client.DownloadFile(ctx, e.fs, t.PreviewURL, dir, previewStem(release, t, number), number+".mp3", e.onBytes)
		if err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("preview of track %s %q: %w", number, t.Title, err))
			continue
		}
		out.AddTrackFile(path, t)
	}
	return out
}

// previewStem names a preview file "<artist> - <album> - <NN> <title>".
func previewStem(release *model.Release, t model.Track, number string) string {
	title := t.Title
	if !release.IsAlbum() && release.Title != "" {
		title = release.Title
	}
	head := strings.Join(lo.Compact([]string{release.Artist, release.Album()}), " - ")
	name := number + " " + title
	if head != "" {
		name = head + " - " + name
	}
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	return naming.SanitizeSegment(name, naming.Universal)
}
