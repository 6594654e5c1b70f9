package bandcamp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// ParseMusicGrid extracts release URLs from an artist's music page.
//
// Every anchor inside ol#music-grid is a release. Relative links are joined
// to baseURL ("https://artist.bandcamp.com"); absolute links keep their own
// host, which happens for releases hosted on a label's page.
//
// When an artist has only one release, the platform serves the release page
// itself instead of a grid; pageURL is then the single release URL.
//
// Duplicate URLs are removed, first occurrence wins.
//
// Returns ErrNoReleases if no release URL can be found.
//
// Example:
//
//	urls, err := ParseMusicGrid(html, "https://artist.bandcamp.com", "https://artist.bandcamp.com/music")
//	if errors.Is(err, ErrNoReleases) {
//	    fmt.Println("Artist has no published music")
//	}
func ParseMusicGrid(html, baseURL, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	grid := doc.Find("ol#music-grid").First()
	if grid.Length() == 0 {
		if isSingleReleaseArtist(doc) {
			return []string{pageURL}, nil
		}
		return nil, ErrNoReleases
	}

	var urls []string
	grid.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if u := joinReleaseURL(baseURL, href); u != "" {
			urls = append(urls, u)
		}
	})

	urls = lo.Uniq(urls)
	if len(urls) == 0 {
		return nil, ErrNoReleases
	}
	return urls, nil
}

// isSingleReleaseArtist checks if the page is a release page rather than a
// music listing: it carries the release data island.
func isSingleReleaseArtist(doc *goquery.Document) bool {
	return doc.Find("script[data-tralbum]").Length() > 0
}

func joinReleaseURL(baseURL, href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	p := strings.Trim(parsed.Path, "/ ")
	if p == "" {
		return ""
	}
	if parsed.Scheme != "" {
		return parsed.Scheme + "://" + strings.Trim(parsed.Host, "/ ") + "/" + p
	}
	return strings.TrimRight(baseURL, "/") + "/" + p
}
