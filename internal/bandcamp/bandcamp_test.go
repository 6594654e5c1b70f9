package bandcamp

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamper/internal/config"
	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/http/httpfake"
	"github.com/handiism/bandcamper/internal/model"
)

const albumTralbum = `{
	"id": 1234,
	"item_type": "album",
	"artist": "Example Artist",
	"art_id": 42,
	"freeDownloadPage": "https://bandcamp.com/download?id=1234",
	"current": {"title": "First Album", "release_date": "05 Mar 2021 00:00:00 GMT", "publish_date": "01 Jan 2020 00:00:00 GMT", "require_email": null},
	"trackinfo": [
		{"title": "Intro", "track_num": 1, "duration": 61.5, "file": {"mp3-128": "//t4.bcbits.com/stream/1"}},
		{"title": "Outro", "track_num": 2, "duration": 120, "file": null}
	]
}`

const trackTralbum = `{
	"id": 99,
	"item_type": "track",
	"artist": "Example Artist",
	"freeDownloadPage": null,
	"current": {"title": "Lonely Song", "release_date": null, "publish_date": "17 Aug 2019 12:00:00 GMT", "require_email": 1},
	"trackinfo": [{"title": "Lonely Song", "track_num": null, "duration": 200, "file": {"mp3-128": "https://t4.bcbits.com/stream/9"}}]
}`

func releasePage(tralbum, extra string) string {
	return fmt.Sprintf(`<html><body>
		<div id="tralbumArt"><a class="popupImage" href="https://f4.bcbits.com/img/a0000000042_10.jpg"><img></a></div>
		%s
		<script type="text/javascript" data-tralbum="%s"></script>
	</body></html>`, extra, html.EscapeString(tralbum))
}

func TestParseReleasePage_Album(t *testing.T) {
	release, err := ParseReleasePage(releasePage(albumTralbum, ""))
	require.NoError(t, err)

	assert.EqualValues(t, 1234, release.ID)
	assert.Equal(t, "Example Artist", release.Artist)
	assert.Equal(t, "First Album", release.Title)
	assert.True(t, release.IsAlbum())
	assert.Equal(t, "First Album", release.Album())
	assert.Equal(t, "2021", release.Year)
	assert.Equal(t, "https://bandcamp.com/download?id=1234", release.FreeDownloadPage)
	assert.False(t, release.EmailGated)
	assert.Equal(t, "https://f4.bcbits.com/img/a0000000042_10.jpg", release.CoverArtURL)
	assert.Equal(t, []model.FormatID{"mp3-128"}, release.AvailableFormats)

	require.Len(t, release.Tracks, 2)
	assert.Equal(t, "https://t4.bcbits.com/stream/1", release.Tracks[0].PreviewURL)
	assert.Equal(t, 1, *release.Tracks[0].Number)
	assert.False(t, release.Tracks[1].HasPreview())
}

func TestParseReleasePage_Track(t *testing.T) {
	release, err := ParseReleasePage(releasePage(trackTralbum, `<span class="fromAlbum"> Parent Album </span>`))
	require.NoError(t, err)

	assert.False(t, release.IsAlbum())
	assert.Equal(t, "Parent Album", release.Album())
	assert.Equal(t, "2019", release.Year, "falls back to publish date")
	assert.Empty(t, release.FreeDownloadPage)
	assert.True(t, release.EmailGated)
	assert.Nil(t, release.Tracks[0].Number)
}

func TestParseReleasePage_Errors(t *testing.T) {
	_, err := ParseReleasePage(`<html><body>nothing</body></html>`)
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseReleasePage(releasePage(`{"id": `, ""))
	assert.ErrorIs(t, err, ErrParse)
}

func TestFixJSON(t *testing.T) {
	in := `{url: "http://example.bandcamp.com" + "/album/name", x: 1}`
	assert.Equal(t, `{url: "http://example.bandcamp.com/album/name", x: 1}`, fixJSON(in))
}

func TestParseMusicGrid(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		wantErr error
	}{
		{
			name: "relative and absolute links",
			html: `<ol id="music-grid">
				<li><a href="/album/first-album">First</a></li>
				<li><a href="/track/single-track/">Single</a></li>
				<li><a href="https://label.bandcamp.com/album/split">Split</a></li>
			</ol>`,
			want: []string{
				"https://artist.bandcamp.com/album/first-album",
				"https://artist.bandcamp.com/track/single-track",
				"https://label.bandcamp.com/album/split",
			},
		},
		{
			name: "duplicates filtered",
			html: `<ol id="music-grid"><a href="/album/same"></a><a href="/album/same"></a></ol>`,
			want: []string{"https://artist.bandcamp.com/album/same"},
		},
		{
			name:    "no grid",
			html:    `<html><body><a href="/album/outside">x</a></body></html>`,
			wantErr: ErrNoReleases,
		},
		{
			name:    "empty grid",
			html:    `<ol id="music-grid"></ol>`,
			wantErr: ErrNoReleases,
		},
		{
			name: "single release artist",
			html: releasePage(albumTralbum, ""),
			want: []string{"https://artist.bandcamp.com/album/only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMusicGrid(tt.html, "https://artist.bandcamp.com", "https://artist.bandcamp.com/album/only")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeHosts map[string][]string

func (f fakeHosts) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := f[host]; ok {
		return addrs, nil
	}
	return nil, errors.New("no such host")
}

const grid = `<ol id="music-grid"><li><a href="/album/first">First</a></li><li><a href="/track/second">Second</a></li></ol>`

func newTestResolver(t *testing.T, hosts fakeHosts) *Resolver {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/music", func(w http.ResponseWriter, r *http.Request) {
		switch r.Host {
		case "examplelabel.bandcamp.com", "music.example.org":
			fmt.Fprint(w, grid)
		case "emptyartist.bandcamp.com":
			fmt.Fprint(w, `<html><body>nothing here</body></html>`)
		case "broken.bandcamp.com":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := bchttp.NewClient(bchttp.Config{}, bchttp.WithTransport(httpfake.Route(srv)))
	require.NoError(t, err)
	return NewResolver(client, config.NewPlatform(), WithHostResolver(hosts))
}

func TestResolver_Resolve(t *testing.T) {
	hosts := fakeHosts{
		"music.example.org": {"35.241.62.186"},
		"other.example.org": {"93.184.216.34"},
	}
	r := newTestResolver(t, hosts)
	ctx := context.Background()

	expanded := []string{"https://examplelabel.bandcamp.com/album/first", "https://examplelabel.bandcamp.com/track/second"}

	tests := []struct {
		name       string
		identifier string
		want       []string
		wantErr    error
	}{
		{name: "subdomain", identifier: "ExampleLabel", want: expanded},
		{name: "artist root without scheme", identifier: "examplelabel.bandcamp.com", want: expanded},
		{name: "artist music url", identifier: "https://examplelabel.bandcamp.com/music/", want: expanded},
		{name: "release url kept", identifier: "https://examplelabel.bandcamp.com/album/first", want: []string{"https://examplelabel.bandcamp.com/album/first"}},
		{name: "http upgraded", identifier: "http://examplelabel.bandcamp.com/track/x", want: []string{"https://examplelabel.bandcamp.com/track/x"}},
		{name: "custom domain root", identifier: "music.example.org", want: []string{"https://music.example.org/album/first", "https://music.example.org/track/second"}},
		{name: "custom domain release", identifier: "https://music.example.org/album/first", want: []string{"https://music.example.org/album/first"}},
		{name: "foreign domain", identifier: "other.example.org/album/x", wantErr: ErrInvalidSource},
		{name: "unknown domain", identifier: "nowhere.invalid", wantErr: ErrInvalidSource},
		{name: "garbage", identifier: "%%%", wantErr: ErrInvalidSource},
		{name: "artist 404", identifier: "missingartist", wantErr: ErrNotFound},
		{name: "artist without releases", identifier: "emptyartist", wantErr: ErrNoReleases},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.identifier)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_RequestError(t *testing.T) {
	r := newTestResolver(t, nil)
	_, err := r.Resolve(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, bchttp.IsStatus(err, http.StatusInternalServerError))
}

func TestResolver_KeepsHTTPWhenNotForced(t *testing.T) {
	r := newTestResolver(t, nil)
	WithForceHTTPS(false)(r)

	got, err := r.Resolve(context.Background(), "http://examplelabel.bandcamp.com/track/x")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://examplelabel.bandcamp.com/track/x"}, got)
}

func TestExtractor_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/album/first", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, releasePage(albumTralbum, ""))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := bchttp.NewClient(bchttp.Config{}, bchttp.WithTransport(httpfake.Route(srv)))
	require.NoError(t, err)
	ex := NewExtractor(client)

	release, err := ex.Fetch(context.Background(), "https://examplelabel.bandcamp.com/album/first")
	require.NoError(t, err)
	assert.Equal(t, "https://examplelabel.bandcamp.com/album/first", release.URL)

	_, err = ex.Fetch(context.Background(), "https://examplelabel.bandcamp.com/album/gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTargets(t *testing.T) {
	var targets Targets
	assert.Equal(t, 2, targets.Add("https://a.bandcamp.com/album/x", "https://a.bandcamp.com/album/y"))
	assert.Equal(t, 1, targets.Add("https://a.bandcamp.com/album/x/", "https://a.bandcamp.com/album/z"))
	assert.Equal(t, 3, targets.Len())
	assert.Equal(t, []string{
		"https://a.bandcamp.com/album/x",
		"https://a.bandcamp.com/album/y",
		"https://a.bandcamp.com/album/z",
	}, targets.URLs())
}
