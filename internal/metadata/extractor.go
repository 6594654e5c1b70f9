package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/model"
)

// ErrIncomplete is returned when a page yields no title or no artist.
var ErrIncomplete = errors.New("incomplete album metadata")

const (
	minYear = 1950
	maxYear = 2030
)

// Extractor fetches release pages and derives their AlbumMetadata.
//
// It parses independently of the release data extractor so tagging keeps
// working when the download-oriented data island changes shape.
type Extractor struct {
	client *bchttp.Client
	logger zerolog.Logger
}

// NewExtractor creates an Extractor that fetches pages through client.
func NewExtractor(client *bchttp.Client, logger zerolog.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// Extract fetches url and parses its metadata.
func (e *Extractor) Extract(ctx context.Context, url string) (*model.AlbumMetadata, error) {
	resp, err := e.client.Get(ctx, url)
	if err != nil {
		if bchttp.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("metadata page %s not found: %w", url, err)
		}
		return nil, fmt.Errorf("fetch metadata page %s: %w", url, err)
	}

	meta, err := ParseAlbumMetadata(resp.Text(), url)
	if err != nil {
		return nil, err
	}
	e.logger.Debug().
		Str("url", url).
		Str("artist", meta.Artist).
		Str("album", meta.Album).
		Str("year", meta.Year).
		Int("tracks", len(meta.Tracks)).
		Msg("Extracted album metadata")
	return meta, nil
}

// ParseAlbumMetadata derives AlbumMetadata from a release page.
//
// Each field is read through its own selector cascade; a field that cannot
// be read is left empty. Only a missing title or artist is an error.
func ParseAlbumMetadata(html, url string) (*model.AlbumMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse metadata page: %w", err)
	}

	meta := &model.AlbumMetadata{
		Album:     albumTitle(doc),
		Artist:    artistName(doc),
		SourceURL: url,
	}
	if meta.Album == "" {
		return nil, fmt.Errorf("%w: no album title on %s", ErrIncomplete, url)
	}
	if meta.Artist == "" {
		return nil, fmt.Errorf("%w: no artist on %s", ErrIncomplete, url)
	}
	meta.Year = releaseYear(doc, html)
	meta.Tracks = trackList(doc)
	return meta, nil
}

// firstText returns the trimmed text of the first non-empty match of the
// selectors, tried in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func albumTitle(doc *goquery.Document) string {
	return firstText(doc, "h2.trackTitle", "h1.trackTitle", "h2")
}

var byPrefix = regexp.MustCompile(`^by\s+`)

func artistName(doc *goquery.Document) string {
	if byline := doc.Find("h3").First(); byline.Length() > 0 {
		if link := strings.TrimSpace(byline.Find("a").First().Text()); link != "" {
			return link
		}
		if text := byPrefix.ReplaceAllString(strings.TrimSpace(byline.Text()), ""); text != "" {
			return text
		}
	}
	return firstText(doc, `span[itemprop="byArtist"]`, "a.artist")
}

var (
	releasedPhrase = regexp.MustCompile(`(?i)released\s+[A-Za-z]+\s+\d{1,2},?\s+(\d{4})`)
	anyYear        = regexp.MustCompile(`(\d{4})`)
	recentYear     = regexp.MustCompile(`\b(20[0-2][0-9])\b`)
	olderYear      = regexp.MustCompile(`\b(19[5-9][0-9])\b`)
	copyrightYear  = []*regexp.Regexp{
		regexp.MustCompile(`\x{00a9}\s*(\d{4})`),
		regexp.MustCompile(`(?i)copyright\s+(\d{4})`),
	}
)

// releaseYear runs the year cascade, from the most to the least reliable
// source. Candidates outside [minYear, maxYear] are discarded.
func releaseYear(doc *goquery.Document, html string) string {
	sources := []func() string{
		func() string { return creditsYear(doc) },
		func() string { return metaTagYear(doc) },
		func() string { return dataBlobYear(doc) },
		func() string { return linkedDataYear(doc) },
		func() string { return pageTextYear(html) },
		func() string { return copyrightNoticeYear(html) },
	}
	for _, source := range sources {
		if year := source(); year != "" {
			return year
		}
	}
	return ""
}

func validYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= minYear && n <= maxYear
}

// yearIn returns the first four-digit run of s when it is a valid year.
func yearIn(s string) string {
	if m := anyYear.FindStringSubmatch(s); m != nil && validYear(m[1]) {
		return m[1]
	}
	return ""
}

func creditsYear(doc *goquery.Document) string {
	credits := doc.Find("div.tralbum-credits").First()
	if credits.Length() == 0 {
		return ""
	}
	if m := releasedPhrase.FindStringSubmatch(credits.Text()); m != nil && validYear(m[1]) {
		return m[1]
	}
	return ""
}

func metaTagYear(doc *goquery.Document) string {
	var year string
	doc.Find(`meta[property="music:release_date"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		year = yearIn(s.AttrOr("content", ""))
		return year == ""
	})
	return year
}

func dataBlobYear(doc *goquery.Document) string {
	blobs := []string{
		doc.Find("div#pagedata").AttrOr("data-blob", ""),
		doc.Find("script[data-tralbum]").AttrOr("data-tralbum", ""),
	}
	for _, blob := range blobs {
		if blob == "" || !gjson.Valid(blob) {
			continue
		}
		current := gjson.Get(blob, "current")
		for _, field := range []string{"release_date", "publish_date"} {
			if year := yearIn(current.Get(field).String()); year != "" {
				return year
			}
		}
	}
	return ""
}

func linkedDataYear(doc *goquery.Document) string {
	var year string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		published := gjson.Get(s.Text(), "datePublished").String()
		if len(published) >= 4 && validYear(published[:4]) {
			year = published[:4]
		}
		return year == ""
	})
	return year
}

// pageTextYear returns the most recent year literal in the raw page,
// preferring this century's years over last century's.
func pageTextYear(html string) string {
	for _, pattern := range []*regexp.Regexp{recentYear, olderYear} {
		best := 0
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if !validYear(m[1]) {
				continue
			}
			if n, _ := strconv.Atoi(m[1]); n > best {
				best = n
			}
		}
		if best > 0 {
			return strconv.Itoa(best)
		}
	}
	return ""
}

func copyrightNoticeYear(html string) string {
	for _, pattern := range copyrightYear {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if validYear(m[1]) {
				return m[1]
			}
		}
	}
	return ""
}

var nonDigits = regexp.MustCompile(`\D`)

// trackList reads the track table. Rows without a number or a title are omitted.
func trackList(doc *goquery.Document) []model.TrackInfo {
	var tracks []model.TrackInfo
	doc.Find("table#track_table tr.track_row_view").Each(func(_ int, row *goquery.Selection) {
		digits := nonDigits.ReplaceAllString(strings.TrimSpace(row.Find("div.track_number").First().Text()), "")
		number, err := strconv.Atoi(digits)
		if err != nil {
			return
		}
		title := strings.TrimSpace(row.Find("span.track-title").First().Text())
		if title == "" {
			return
		}
		tracks = append(tracks, model.TrackInfo{
			Number:   number,
			Title:    title,
			Duration: strings.TrimSpace(row.Find("span.time").First().Text()),
		})
	})
	return tracks
}
