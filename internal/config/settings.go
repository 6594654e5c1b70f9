package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/handiism/bandcamper/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	Destination string   `mapstructure:"destination"   yaml:"destination"`
	Output      string   `mapstructure:"output"        yaml:"output"`
	OutputExtra string   `mapstructure:"output_extra"  yaml:"output_extra"`
	Formats     []string `mapstructure:"formats"       yaml:"formats"`
	Platform    string   `mapstructure:"platform"      yaml:"platform"`

	// Acquisition
	Fallback          bool          `mapstructure:"fallback"            yaml:"fallback"`
	ForceHTTPS        bool          `mapstructure:"force_https"         yaml:"force_https"`
	EmailTimeout      time.Duration `mapstructure:"email_timeout"       yaml:"email_timeout"`
	EmailPollInterval time.Duration `mapstructure:"email_poll_interval" yaml:"email_poll_interval"`
	EmailCountry      string        `mapstructure:"email_country"       yaml:"email_country"`
	EmailPostcode     string        `mapstructure:"email_postcode"      yaml:"email_postcode"`
	MailboxAPI        string        `mapstructure:"mailbox_api"         yaml:"mailbox_api"`

	// Transport
	UserAgent             string        `mapstructure:"user_agent"              yaml:"user_agent"`
	Proxy                 string        `mapstructure:"proxy"                   yaml:"proxy"`
	HTTPTimeout           time.Duration `mapstructure:"http_timeout"            yaml:"http_timeout"`
	DownloadMaxRetries    int           `mapstructure:"download_max_retries"    yaml:"download_max_retries"`
	DownloadRetryCooldown time.Duration `mapstructure:"download_retry_cooldown" yaml:"download_retry_cooldown"`

	// Post-processing
	SaveCoverArt    bool   `mapstructure:"save_cover_art"     yaml:"save_cover_art"`
	CoverArtMaxSize int    `mapstructure:"cover_art_max_size" yaml:"cover_art_max_size"`
	ModifyTags      bool   `mapstructure:"modify_tags"        yaml:"modify_tags"`
	CreatePlaylist  bool   `mapstructure:"create_playlist"    yaml:"create_playlist"`
	PlaylistFormat  string `mapstructure:"playlist_format"    yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended     bool   `mapstructure:"m3u_extended"       yaml:"m3u_extended"`

	// Logging
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"` // console, pretty, json
}

const envPrefix = "BANDCAMPER"

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Destination: filepath.Join(homeDir, "Music", "Bandcamp"),
		Output:      "{artist}/{album}/{track_number:02d} {title}{ext}",
		OutputExtra: "{artist}/{album}/{filename}",
		Formats:     []string{"mp3-320"},
		Platform:    "auto",

		Fallback:          true,
		ForceHTTPS:        true,
		EmailTimeout:      60 * time.Second,
		EmailPollInterval: time.Second,
		EmailCountry:      "US",
		EmailPostcode:     "0",
		MailboxAPI:        "https://www.1secmail.com/api/v1/",

		UserAgent:             "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		HTTPTimeout:           60 * time.Second,
		DownloadMaxRetries:    7,
		DownloadRetryCooldown: 200 * time.Millisecond,

		SaveCoverArt:    true,
		CoverArtMaxSize: 0,
		ModifyTags:      true,
		CreatePlaylist:  false,
		PlaylistFormat:  "m3u",
		M3UExtended:     true,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load reads settings from a config file and the environment.
//
// Values are layered: defaults, then the file (if any), then BANDCAMPER_*
// environment variables. Flags are applied by the caller on the result.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaultValues(DefaultSettings()) {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bandcamper")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "bandcamper"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := DefaultSettings()
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return settings, nil
}

// defaultValues flattens the defaults into viper keys so AutomaticEnv can
// see every key, including those absent from the config file.
func defaultValues(s *Settings) map[string]any {
	return map[string]any{
		"destination":             s.Destination,
		"output":                  s.Output,
		"output_extra":            s.OutputExtra,
		"formats":                 s.Formats,
		"platform":                s.Platform,
		"fallback":                s.Fallback,
		"force_https":             s.ForceHTTPS,
		"email_timeout":           s.EmailTimeout,
		"email_poll_interval":     s.EmailPollInterval,
		"email_country":           s.EmailCountry,
		"email_postcode":          s.EmailPostcode,
		"mailbox_api":             s.MailboxAPI,
		"user_agent":              s.UserAgent,
		"proxy":                   s.Proxy,
		"http_timeout":            s.HTTPTimeout,
		"download_max_retries":    s.DownloadMaxRetries,
		"download_retry_cooldown": s.DownloadRetryCooldown,
		"save_cover_art":          s.SaveCoverArt,
		"cover_art_max_size":      s.CoverArtMaxSize,
		"modify_tags":             s.ModifyTags,
		"create_playlist":         s.CreatePlaylist,
		"playlist_format":         s.PlaylistFormat,
		"m3u_extended":            s.M3UExtended,
		"log_level":               s.LogLevel,
		"log_format":              s.LogFormat,
	}
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings against the platform table.
func (s *Settings) Validate(p *Platform) error {
	if strings.TrimSpace(s.Destination) == "" {
		return errors.New("destination is empty")
	}
	if strings.TrimSpace(s.Output) == "" {
		return errors.New("output template is empty")
	}
	if strings.TrimSpace(s.OutputExtra) == "" {
		return errors.New("output_extra template is empty")
	}
	if len(s.Formats) == 0 {
		return errors.New("no download format selected")
	}
	if unknown := lo.Filter(s.Formats, func(f string, _ int) bool {
		return !p.IsFormat(model.FormatID(f))
	}); len(unknown) > 0 {
		return fmt.Errorf("unknown download format(s) %s, expected one of %s",
			strings.Join(unknown, ", "), strings.Join(p.FormatNames(), ", "))
	}
	if s.EmailTimeout <= 0 {
		return errors.New("email_timeout must be positive")
	}
	if s.EmailPollInterval <= 0 {
		return errors.New("email_poll_interval must be positive")
	}
	if s.HTTPTimeout <= 0 {
		return errors.New("http_timeout must be positive")
	}
	if s.CoverArtMaxSize < 0 {
		return errors.New("cover_art_max_size must not be negative")
	}
	switch s.PlaylistFormat {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("unknown playlist format %q", s.PlaylistFormat)
	}
	return nil
}

// FormatIDs returns the requested formats, deduplicated, in their configured order.
func (s *Settings) FormatIDs() []model.FormatID {
	return lo.Uniq(lo.Map(s.Formats, func(f string, _ int) model.FormatID {
		return model.FormatID(strings.ToLower(strings.TrimSpace(f)))
	}))
}
