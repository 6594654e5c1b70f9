package config

import (
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/handiism/bandcamper/internal/model"
)

// Subdomain rules from the artist sign-up form: at least four characters,
// lowercase letters, digits and hyphens only, not ending with a hyphen.
const subdomainPattern = `[a-z0-9][a-z0-9-]{2,}[a-z0-9]`

// Platform holds the immutable facts about the content platform.
type Platform struct {
	// Domain is the platform's root domain.
	Domain string

	// CustomDomainIP is the address custom artist domains point at.
	CustomDomainIP string

	// Formats lists every downloadable encoding.
	Formats []model.FormatID

	// FallbackFormat is the encoding of the embedded preview streams.
	FallbackFormat model.FormatID

	// EmailSender full-matches the sender of download emails.
	EmailSender *regexp.Regexp

	// AudioExtensions are the file extensions treated as audio, lowercase with the dot.
	AudioExtensions []string

	subdomain *regexp.Regexp
	host      *regexp.Regexp
}

// NewPlatform returns the platform table.
func NewPlatform() *Platform {
	return &Platform{
		Domain:         "bandcamp.com",
		CustomDomainIP: "35.241.62.186",
		Formats: []model.FormatID{
			"aac-hi",
			"aiff-lossless",
			"alac",
			"flac",
			"mp3-128",
			"mp3-320",
			"mp3-v0",
			"vorbis",
			"wav",
		},
		FallbackFormat:  "mp3-128",
		EmailSender:     regexp.MustCompile(`^.+@email\.bandcamp\.com$`),
		AudioExtensions: []string{".mp3", ".flac", ".wav", ".m4a", ".aiff", ".ogg"},
		subdomain:       regexp.MustCompile(`(?i)^` + subdomainPattern + `$`),
		host:            regexp.MustCompile(`(?i)^(?:www\.)?` + subdomainPattern + `\.bandcamp\.com$`),
	}
}

// IsSubdomain reports whether name is a bare artist subdomain.
func (p *Platform) IsSubdomain(name string) bool {
	return p.subdomain.MatchString(name)
}

// IsPlatformHost reports whether host belongs to the platform's own domain.
func (p *Platform) IsPlatformHost(host string) bool {
	return p.host.MatchString(host)
}

// ArtistURL builds the artist root URL for a bare subdomain.
func (p *Platform) ArtistURL(subdomain string) string {
	return "https://" + strings.ToLower(subdomain) + "." + p.Domain + "/music"
}

// IsFormat reports whether f is a known encoding.
func (p *Platform) IsFormat(f model.FormatID) bool {
	return slices.Contains(p.Formats, model.FormatID(strings.ToLower(string(f))))
}

// FormatNames returns the known encodings as strings.
func (p *Platform) FormatNames() []string {
	return lo.Map(p.Formats, func(f model.FormatID, _ int) string { return string(f) })
}

// IsAudioExt reports whether ext (with the dot) is a recognised audio extension.
func (p *Platform) IsAudioExt(ext string) bool {
	return slices.Contains(p.AudioExtensions, strings.ToLower(ext))
}
