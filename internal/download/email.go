package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/handiism/bandcamper/internal/mailbox"
	"github.com/handiism/bandcamper/internal/model"
	"github.com/handiism/bandcamper/internal/retry"
)

// requestByEmail submits a disposable address for an email-gated release and
// waits for the download link to arrive. It returns the download page URL.
func (e *Engine) requestByEmail(ctx context.Context, release *model.Release) (string, error) {
	u, err := url.Parse(release.URL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: release URL %q has no host", ErrEmailRejected, release.URL)
	}

	box, err := e.mailbox.Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("create mailbox: %w", err)
	}
	e.logger.Debug().Str("address", box.Address()).Str("url", release.URL).Msg("Requesting download by email")

	form := url.Values{
		"encoding_name": {"none"},
		"item_id":       {strconv.FormatInt(release.ID, 10)},
		"item_type":     {string(release.ItemType)},
		"address":       {box.Address()},
		"country":       {e.email.Country},
		"postcode":      {e.email.Postcode},
	}
	resp, err := e.client.PostForm(ctx, "https://"+u.Host+"/email_download", form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEmailRejected, err)
	}
	if !gjson.GetBytes(resp.Body, "ok").Bool() {
		return "", fmt.Errorf("%w: %s", ErrEmailRejected, strings.TrimSpace(resp.Text()))
	}

	fromPlatform := mailbox.FromAddressValidator(e.platform.EmailSender)
	link, err := retry.Poll(ctx, e.email.PollInterval, e.email.Timeout, func(ctx context.Context) (string, bool, error) {
		msgs, err := box.Messages(ctx, fromPlatform)
		if err != nil {
			e.logger.Debug().Err(err).Msg("Mailbox check failed")
			return "", false, nil
		}
		if len(msgs) == 0 {
			return "", false, nil
		}
		link := firstLink(msgs[0].HTMLBody)
		if link == "" {
			return "", false, errors.New("download email holds no link")
		}
		return link, true, nil
	})
	if errors.Is(err, retry.ErrTimeout) {
		return "", fmt.Errorf("%w (waited %s)", ErrEmailTimeout, e.email.Timeout)
	}
	if err != nil {
		return "", err
	}
	return link, nil
}

// firstLink returns the href of the first anchor of an HTML body.
func firstLink(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("a[href]").First().AttrOr("href", ""))
}
