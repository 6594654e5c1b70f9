package download

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/handiism/bandcamper/internal/bandcamp"
	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/model"
)

// Descriptor describes one format offered on a download page.
type Descriptor struct {
	URL         string
	SizeMB      string
	Description string
}

// ParseDownloadPage reads the per-format descriptors from the page data blob
// of a free download page.
func ParseDownloadPage(html string) (map[model.FormatID]Descriptor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bandcamp.ErrParse, err)
	}

	blob, ok := doc.Find("div#pagedata").Attr("data-blob")
	if !ok {
		return nil, fmt.Errorf("%w: download page has no data blob", bandcamp.ErrParse)
	}
	if !gjson.Valid(blob) {
		return nil, fmt.Errorf("%w: download page data blob is not JSON", bandcamp.ErrParse)
	}

	downloads := gjson.Get(blob, "download_items.0.downloads")
	if !downloads.IsObject() {
		return nil, fmt.Errorf("%w: download page lists no downloads", bandcamp.ErrParse)
	}

	out := make(map[model.FormatID]Descriptor)
	downloads.ForEach(func(key, value gjson.Result) bool {
		out[model.FormatID(key.String())] = Descriptor{
			URL:         value.Get("url").String(),
			SizeMB:      value.Get("size_mb").String(),
			Description: value.Get("description").String(),
		}
		return true
	})
	return out, nil
}

// StatURL returns the stat endpoint that resolves a descriptor URL into a
// direct download link.
func StatURL(descriptorURL string) string {
	return strings.Replace(descriptorURL, "/download/", "/statdownload/", 1)
}

// resolveDownload calls the stat endpoint of d and returns the link to stream.
func (e *Engine) resolveDownload(ctx context.Context, format model.FormatID, d Descriptor) (string, error) {
	raw := d.URL
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	resp, err := e.client.Get(ctx, StatURL(raw),
		bchttp.WithParams(url.Values{".vrs": {"1"}}),
		bchttp.WithHeader("Accept", "application/json"),
	)
	if err != nil {
		if bchttp.IsStatus(err, http.StatusNotFound) {
			return "", fmt.Errorf("%w: %s stat endpoint not found", ErrFormatErrored, format)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrFormatErrored, format, err)
	}

	stat := statJSON(resp.Text())
	var link string
	switch result := strings.ToLower(gjson.Get(stat, "result").String()); result {
	case "ok":
		link = gjson.Get(stat, "download_url").String()
	case "err":
		link = gjson.Get(stat, "retry_url").String()
	default:
		return "", fmt.Errorf("%w: %s returned result %q", ErrFormatErrored, format, result)
	}
	if link == "" {
		return "", fmt.Errorf("%w: %s returned no link", ErrFormatErrored, format)
	}
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	return link, nil
}

var statCallbackArg = regexp.MustCompile(`(?s)\(\s*(\{.*\})\s*\)`)

// statJSON returns the JSON object of a stat response, which may be the
// argument of a JavaScript callback.
func statJSON(body string) string {
	if gjson.Valid(body) {
		return body
	}
	if m := statCallbackArg.FindStringSubmatch(body); m != nil && gjson.Valid(m[1]) {
		return m[1]
	}
	return "{}"
}
