package bandcamp

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/handiism/bandcamper/internal/bandcamp/dto"
	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/model"
)

const (
	artworkURLStart = "https://f4.bcbits.com/img/a"
	artworkURLEnd   = "_0.jpg"
)

// Extractor fetches release pages and extracts their Release data.
//
// Bandcamp embeds release data as JSON within the HTML page in a
// data-tralbum attribute. The Extractor reads this JSON together with the
// artwork link and the "from album" label of single-track pages.
//
// Example usage:
//
//	ex := NewExtractor(client)
//	release, err := ex.Fetch(ctx, "https://artist.bandcamp.com/album/name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Album: %s by %s\n", release.Title, release.Artist)
//	for _, track := range release.Tracks {
//	    fmt.Printf("  %s\n", track.Title)
//	}
type Extractor struct {
	client *bchttp.Client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *bchttp.Client) *Extractor {
	return &Extractor{client: client}
}

// Fetch downloads and parses the release page at url.
//
// Returns an error wrapping:
//   - ErrNotFound if the page answers 404
//   - ErrParse if the data island is missing or malformed
//
// Other request failures are returned wrapped as they are.
func (e *Extractor) Fetch(ctx context.Context, url string) (*model.Release, error) {
	resp, err := e.client.Get(ctx, url)
	if err != nil {
		if bchttp.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		return nil, fmt.Errorf("request error when getting music data from %s: %w", url, err)
	}

	release, err := ParseReleasePage(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	release.URL = url
	return release, nil
}

// ParseReleasePage extracts release info from a release page's HTML.
//
// This method performs the following steps:
//  1. Extracts the data-tralbum JSON from the HTML
//  2. Fixes malformed JSON (e.g., URL concatenation issues)
//  3. Deserializes JSON into release/track data
//  4. Reads the artwork link and the "from album" label
//
// The returned Release has no URL; Fetch sets it.
func ParseReleasePage(html string) (*model.Release, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	raw, ok := doc.Find("script[data-tralbum]").First().Attr("data-tralbum")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: could not find release data", ErrParse)
	}
	if !gjson.Valid(raw) {
		raw = fixJSON(raw)
	}

	var tralbum dto.Tralbum
	if err := json.Unmarshal([]byte(raw), &tralbum); err != nil {
		return nil, fmt.Errorf("%w: release JSON: %v", ErrParse, err)
	}
	data := gjson.Parse(raw)

	release := &model.Release{
		ID:          tralbum.ID,
		Artist:      strings.TrimSpace(tralbum.Artist),
		Title:       strings.TrimSpace(tralbum.Current.Title),
		ItemType:    model.ItemType(tralbum.ItemType),
		Year:        tralbum.Year(),
		EmailGated:  data.Get("current.require_email").Bool(),
		CoverArtURL: coverArtURL(doc, tralbum.ArtID),
	}
	if tralbum.FreeDownloadPage != nil {
		release.FreeDownloadPage = strings.TrimSpace(*tralbum.FreeDownloadPage)
	}
	if span := doc.Find("span.fromAlbum").First(); span.Length() > 0 {
		release.AlbumTitle = strings.TrimSpace(span.Text())
	}

	var formats []model.FormatID
	for _, jt := range tralbum.Tracks {
		track := model.Track{
			Number:     jt.Number,
			Title:      strings.TrimSpace(jt.Title),
			Duration:   jt.Duration,
			PreviewURL: previewURL(jt.File),
		}
		release.Tracks = append(release.Tracks, track)
		for f := range jt.File {
			formats = append(formats, model.FormatID(f))
		}
	}
	release.AvailableFormats = lo.Uniq(formats)

	return release, nil
}

// previewURL returns the mp3-128 stream of a track, fixing protocol-relative URLs.
func previewURL(files map[string]string) string {
	u := strings.TrimSpace(files["mp3-128"])
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}

// coverArtURL prefers the page's full-size artwork link and falls back to
// building the URL from the artwork id.
func coverArtURL(doc *goquery.Document, artID *int64) string {
	if href, ok := doc.Find("div#tralbumArt > a.popupImage").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	if artID != nil && *artID > 0 {
		return fmt.Sprintf("%s%010d%s", artworkURLStart, *artID, artworkURLEnd)
	}
	return ""
}

var concatenatedURL = regexp.MustCompile(`(url: ".+)" \+ "(.+",)`)

// fixJSON fixes malformed JSON from Bandcamp pages.
//
// Some Bandcamp pages have JavaScript-style URL concatenation in the JSON:
//
//	url: "http://example.bandcamp.com" + "/album/name",
//
// This is not valid JSON, so we fix it by removing the concatenation:
//
//	url: "http://example.bandcamp.com/album/name",
func fixJSON(data string) string {
	return concatenatedURL.ReplaceAllString(data, "${1}${2}")
}
