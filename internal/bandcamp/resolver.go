package bandcamp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/rs/zerolog"

	"github.com/handiism/bandcamper/internal/config"
	bchttp "github.com/handiism/bandcamper/internal/http"
)

// HostResolver looks up the addresses of a host.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

const hostCacheTTL = time.Hour

// Resolver turns user identifiers into release URLs.
//
// An identifier is one of:
//   - an artist subdomain ("someband"), expanded to every release of the artist
//   - an artist root URL ("someband.bandcamp.com", ".../music"), expanded likewise
//   - a release URL, returned as-is
//   - any of the URL forms on a custom domain that points at the platform
//
// Example usage:
//
//	r := NewResolver(client, config.NewPlatform())
//	urls, err := r.Resolve(ctx, "someband")
//	switch {
//	case errors.Is(err, ErrNotFound):
//	case errors.Is(err, ErrNoReleases):
//	}
type Resolver struct {
	client     *bchttp.Client
	platform   *config.Platform
	hosts      HostResolver
	hostCache  *ccache.Cache[[]string]
	forceHTTPS bool
	logger     zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHostResolver replaces the DNS resolver used for custom domains.
func WithHostResolver(h HostResolver) ResolverOption {
	return func(r *Resolver) { r.hosts = h }
}

// WithForceHTTPS controls whether explicit http:// URLs are upgraded. Default true.
func WithForceHTTPS(force bool) ResolverOption {
	return func(r *Resolver) { r.forceHTTPS = force }
}

// WithResolverLogger sets the diagnostic logger.
func WithResolverLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a Resolver.
func NewResolver(client *bchttp.Client, platform *config.Platform, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:     client,
		platform:   platform,
		hosts:      net.DefaultResolver,
		hostCache:  ccache.New(ccache.Configure[[]string]().MaxSize(256)),
		forceHTTPS: true,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the release URLs an identifier designates.
func (r *Resolver) Resolve(ctx context.Context, identifier string) ([]string, error) {
	identifier = strings.TrimSpace(identifier)

	if r.platform.IsSubdomain(identifier) {
		return r.ArtistReleases(ctx, r.platform.ArtistURL(identifier))
	}

	u, err := r.normalizeURL(identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, identifier)
	}

	if !r.platform.IsPlatformHost(u.Host) && !r.isCustomDomain(ctx, u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, identifier)
	}

	switch strings.Trim(u.Path, "/ ") {
	case "", "music":
		return r.ArtistReleases(ctx, u.Scheme+"://"+u.Host+"/music")
	default:
		return []string{u.String()}, nil
	}
}

func (r *Resolver) normalizeURL(identifier string) (*url.URL, error) {
	raw := identifier
	hasScheme := strings.Contains(raw, "://")
	if !hasScheme {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return nil, fmt.Errorf("missing host")
	}
	if hasScheme && r.forceHTTPS {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u, nil
}

// isCustomDomain reports whether host resolves to the platform's custom-domain address.
func (r *Resolver) isCustomDomain(ctx context.Context, host string) bool {
	item, err := r.hostCache.Fetch(strings.ToLower(host), hostCacheTTL, func() ([]string, error) {
		addrs, err := r.hosts.LookupHost(ctx, host)
		if err != nil {
			r.logger.Debug().Err(err).Str("host", host).Msg("Host lookup failed")
			// cache the miss as well
			return []string{}, nil
		}
		return addrs, nil
	})
	if err != nil || item == nil {
		return false
	}
	return slices.Contains(item.Value(), r.platform.CustomDomainIP)
}

// ArtistReleases fetches an artist's music page and returns its release URLs.
func (r *Resolver) ArtistReleases(ctx context.Context, musicURL string) ([]string, error) {
	resp, err := r.client.Get(ctx, musicURL)
	if err != nil {
		if bchttp.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, musicURL)
		}
		return nil, fmt.Errorf("request error while getting releases from %s: %w", musicURL, err)
	}

	base, err := url.Parse(musicURL)
	if err != nil {
		return nil, err
	}

	pageURL := musicURL
	if resp.URL != nil {
		pageURL = resp.URL.String()
	}
	urls, err := ParseMusicGrid(resp.Text(), base.Scheme+"://"+base.Host, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w for %s", err, musicURL)
	}
	r.logger.Debug().Str("artist", musicURL).Int("releases", len(urls)).Msg("Expanded artist page")
	return urls, nil
}

// Targets is an insertion-ordered set of release URLs.
type Targets struct {
	seen map[string]struct{}
	urls []string
}

// Add inserts urls and returns how many were new.
func (t *Targets) Add(urls ...string) int {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	added := 0
	for _, u := range urls {
		key := strings.TrimRight(u, "/")
		if _, ok := t.seen[key]; ok {
			continue
		}
		t.seen[key] = struct{}{}
		t.urls = append(t.urls, u)
		added++
	}
	return added
}

// URLs returns the release URLs in insertion order.
func (t *Targets) URLs() []string {
	return slices.Clone(t.urls)
}

// Len returns the number of targets.
func (t *Targets) Len() int {
	return len(t.urls)
}
