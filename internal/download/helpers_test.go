package download

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"html"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/http/httpfake"
	"github.com/handiism/bandcamper/internal/mailbox"
)

// routes maps "host/path" to a handler.
type routes map[string]http.HandlerFunc

func (rs routes) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := rs[r.Host+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (rs routes) client(t *testing.T) *bchttp.Client {
	t.Helper()
	client, err := bchttp.NewClient(
		bchttp.Config{RetryCooldown: time.Millisecond},
		bchttp.WithTransport(httpfake.Route(rs.server(t))),
	)
	require.NoError(t, err)
	return client
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}
}

func blob(data []byte, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if filename != "" {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		}
		_, _ = w.Write(data)
	}
}

// statOK answers a stat request with a direct link, checking the request shape.
func statOK(t *testing.T, link string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get(".vrs") != "1" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("unexpected stat request %s (Accept %q)", r.URL, r.Header.Get("Accept"))
		}
		fmt.Fprintf(w, `{"result":"ok","download_url":%q}`, link)
	}
}

// downloadPage renders a free download page offering the given formats,
// each mapped to its descriptor URL.
func downloadPage(formats map[string]string) string {
	var downloads string
	for f, u := range formats {
		if downloads != "" {
			downloads += ","
		}
		downloads += fmt.Sprintf(`%q:{"url":%q,"size_mb":"12.3MB","description":%q}`, f, u, f)
	}
	data := fmt.Sprintf(`{"download_items":[{"downloads":{%s}}]}`, downloads)
	return `<html><body><div id="pagedata" data-blob="` + html.EscapeString(data) + `"></div></body></html>`
}

// fakeMP3 is an MPEG frame header followed by silence; enough for the tag
// libraries to treat the file as MP3.
func fakeMP3() []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 60)...)
}

func zipArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// orderedZip builds an archive whose entries keep the given order.
func orderedZip(t *testing.T, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func pngImage(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, size, size))))
	return buf.Bytes()
}

type fakeMailbox struct {
	mu         sync.Mutex
	messages   []mailbox.Message
	readyAfter int
	calls      int
}

func (f *fakeMailbox) Address() string { return "listener@1secmail.com" }

func (f *fakeMailbox) Messages(_ context.Context, validators ...mailbox.Validator) ([]mailbox.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls < f.readyAfter {
		return nil, nil
	}
	var out []mailbox.Message
	for _, m := range f.messages {
		ok := true
		for _, v := range validators {
			ok = ok && v(m)
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeProvider struct {
	box *fakeMailbox
}

func (p fakeProvider) Generate(context.Context) (mailbox.Mailbox, error) {
	return p.box, nil
}
