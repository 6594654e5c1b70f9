package download

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamper/internal/config"
	bchttp "github.com/handiism/bandcamper/internal/http"
	"github.com/handiism/bandcamper/internal/http/httpfake"
)

const musicGrid = `<html><body><ol id="music-grid">
	<li><a href="/album/first-album">First Album</a></li>
	<li><a href="/album/paid-album">Paid Album</a></li>
</ol></body></html>`

const trackTable = `<table id="track_table">
	<tr class="track_row_view"><td><div class="track_number">1.</div></td><td><span class="track-title">Intro</span><span class="time">01:01</span></td></tr>
	<tr class="track_row_view"><td><div class="track_number">2.</div></td><td><span class="track-title">Outro</span><span class="time">02:00</span></td></tr>
</table>`

func releaseHTML(title, tralbum string) string {
	return fmt.Sprintf(`<html><body>
		<h2 class="trackTitle">%s</h2>
		<h3>by <span><a href="https://examplelabel.bandcamp.com">Example Artist</a></span></h3>
		<div id="tralbumArt"><a class="popupImage" href="https://f4.bcbits.com/img/a0000000042_10.jpg"><img></a></div>
		%s
		<div class="tralbum-credits">released March 5, 2021</div>
		<script type="text/javascript" data-tralbum="%s"></script>
	</body></html>`, title, trackTable, html.EscapeString(tralbum))
}

const freeTralbum = `{
	"id": 1,
	"item_type": "album",
	"artist": "Example Artist",
	"freeDownloadPage": "https://bandcamp.com/download?id=1",
	"current": {"title": "First Album", "release_date": "05 Mar 2021 00:00:00 GMT"},
	"trackinfo": [
		{"title": "Intro", "track_num": 1, "duration": 61, "file": {"mp3-128": "https://t4.bcbits.com/stream/1"}},
		{"title": "Outro", "track_num": 2, "duration": 120, "file": {"mp3-128": "https://t4.bcbits.com/stream/2"}}
	]
}`

const paidTralbum = `{
	"id": 2,
	"item_type": "album",
	"artist": "Example Artist",
	"freeDownloadPage": null,
	"current": {"title": "Paid Album", "release_date": "01 Jan 2022 00:00:00 GMT", "require_email": null},
	"trackinfo": [{"title": "Intro", "track_num": 1, "duration": 61, "file": null}]
}`

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) at(level ProgressLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func labelRoutes(t *testing.T) routes {
	archive := zipArchive(t, map[string][]byte{
		"Example Artist - First Album - 01 Intro.mp3": fakeMP3(),
		"Example Artist - First Album - 02 Outro.mp3": fakeMP3(),
		"liner notes.txt": []byte("thanks"),
	})
	return routes{
		"examplelabel.bandcamp.com/music":            text(musicGrid),
		"examplelabel.bandcamp.com/album/first-album": text(releaseHTML("First Album", freeTralbum)),
		"examplelabel.bandcamp.com/album/paid-album":  text(releaseHTML("Paid Album", paidTralbum)),
		"bandcamp.com/download": text(downloadPage(map[string]string{
			"flac":    "https://popplers5.bandcamp.com/download/album?enc=flac&id=1",
			"mp3-320": "https://popplers5.bandcamp.com/download/album?enc=mp3-320&id=1",
		})),
		"popplers5.bandcamp.com/statdownload/album": statOK(t, "https://p4.bcbits.com/download/album/1"),
		"p4.bcbits.com/download/album/1":            blob(archive, "Example Artist - First Album.zip"),
		"f4.bcbits.com/img/a0000000042_10.jpg":      blob(pngImage(t, 16), ""),
	}
}

func newTestManager(t *testing.T, rs routes, events *eventLog, configure func(*config.Settings)) *Manager {
	t.Helper()
	settings := config.DefaultSettings()
	settings.Destination = t.TempDir()
	settings.Formats = []string{"mp3-320"}
	settings.Fallback = false
	settings.Platform = "linux"
	settings.HTTPTimeout = 5 * time.Second
	settings.DownloadRetryCooldown = time.Millisecond
	settings.CreatePlaylist = true
	if configure != nil {
		configure(settings)
	}

	m, err := NewManager(settings, config.NewPlatform(), events.add,
		WithHTTPOptions(bchttp.WithTransport(httpfake.Route(rs.server(t)))),
	)
	require.NoError(t, err)
	return m
}

func TestManager_RunLabel(t *testing.T) {
	events := &eventLog{}
	m := newTestManager(t, labelRoutes(t), events, nil)
	dest := m.settings.Destination

	report := m.Run(context.Background(), []string{
		"examplelabel",
		"https://examplelabel.bandcamp.com/album/first-album",
	})

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, report.FilesPlaced)
	assert.Equal(t, 2, report.TagsWritten)
	assert.Zero(t, report.TagsFailed)
	assert.False(t, report.Interrupted)

	require.Len(t, report.Identifiers, 2)
	assert.NoError(t, report.Identifiers[0].Err)
	assert.Len(t, report.Identifiers[0].Releases, 2)
	assert.Empty(t, report.Identifiers[1].Releases, "a release reached twice is processed once")

	album := filepath.Join(dest, "Example Artist", "First Album")
	for _, name := range []string{"01 Intro.mp3", "02 Outro.mp3", "liner notes.txt", "cover.png", "First Album.m3u"} {
		assert.FileExists(t, filepath.Join(album, name))
	}

	leftovers, err := filepath.Glob(filepath.Join(dest, "*"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dest, "Example Artist")}, leftovers, "temporary artifacts are cleaned up")

	f, err := os.Open(filepath.Join(album, "02 Outro.mp3"))
	require.NoError(t, err)
	defer f.Close()
	tags, err := tag.ReadFrom(f)
	require.NoError(t, err)
	assert.Equal(t, "Example Artist", tags.Artist())
	assert.Equal(t, "First Album", tags.Album())
	assert.Equal(t, "Outro", tags.Title())
	track, _ := tags.Track()
	assert.Equal(t, 2, track)

	playlist, err := os.ReadFile(filepath.Join(album, "First Album.m3u"))
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(playlist), "01 Intro.mp3"), strings.Index(string(playlist), "02 Outro.mp3"))

	paid := report.Identifiers[0].Releases[1]
	assert.ErrorIs(t, paid.Err, ErrNoFreeDownload)
	assert.Empty(t, paid.Files)

	warnings := events.at(LevelWarning)
	noFree := 0
	for _, w := range warnings {
		if strings.Contains(w, ErrNoFreeDownload.Error()) {
			noFree++
		}
	}
	assert.Equal(t, 1, noFree, "warnings: %v", warnings)
	assert.NotEmpty(t, events.at(LevelSuccess))

	progress := m.Progress()
	assert.EqualValues(t, 2, progress.Releases)
	assert.EqualValues(t, 2, progress.ReleasesDone)
	assert.EqualValues(t, 3, progress.FilesPlaced)
}

func TestManager_RunResolverFailures(t *testing.T) {
	events := &eventLog{}
	rs := routes{"examplelabel.bandcamp.com/music": text(musicGrid)}
	m := newTestManager(t, rs, events, nil)

	report := m.Run(context.Background(), []string{"not a url at all!", "missingartist", "  "})

	require.Len(t, report.Identifiers, 2)
	assert.Error(t, report.Identifiers[0].Err)
	assert.Error(t, report.Identifiers[1].Err)
	assert.Len(t, events.at(LevelError), 1, "invalid input is an error")
	assert.Contains(t, strings.Join(events.at(LevelWarning), "\n"), "missingartist: artist not found")
	assert.Zero(t, report.Succeeded+report.Failed)
}

func TestManager_Plan(t *testing.T) {
	m := newTestManager(t, labelRoutes(t), &eventLog{}, nil)

	report := m.Plan(context.Background(), []string{"examplelabel", "examplelabel.bandcamp.com/album/first-album"})

	var urls []string
	for _, r := range report.Releases() {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{
		"https://examplelabel.bandcamp.com/album/first-album",
		"https://examplelabel.bandcamp.com/album/paid-album",
	}, urls)

	entries, err := os.ReadDir(m.settings.Destination)
	require.NoError(t, err)
	assert.Empty(t, entries, "planning downloads nothing")
}

func TestManager_RunInterrupted(t *testing.T) {
	m := newTestManager(t, labelRoutes(t), &eventLog{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := m.Run(ctx, []string{"examplelabel"})
	assert.True(t, report.Interrupted)
	assert.Empty(t, report.Releases())
}

func TestReport(t *testing.T) {
	var r Report
	r.add(ReleaseReport{Files: []string{"a"}})
	r.add(ReleaseReport{Files: []string{"b"}, Err: errors.New("partial")})
	r.add(ReleaseReport{})

	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 2, r.Failed)
	assert.Equal(t, 2, r.FilesPlaced)
}
