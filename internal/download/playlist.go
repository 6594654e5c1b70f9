package download

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/handiism/bandcamper/internal/audio"
	ioutils "github.com/handiism/bandcamper/internal/io"
	"github.com/handiism/bandcamper/internal/model"
	"github.com/handiism/bandcamper/internal/naming"
)

// writePlaylist writes a playlist of the placed audio files, in track order,
// next to the first of them. It returns "" when there is no audio file.
func (m *Manager) writePlaylist(release *model.Release, placed []model.PlacedFile) (string, error) {
	files := lo.Filter(placed, func(f model.PlacedFile, _ int) bool { return f.Audio })
	if len(files) == 0 {
		return "", nil
	}
	sort.SliceStable(files, func(i, j int) bool {
		return trackOrder(files[i]) < trackOrder(files[j])
	})

	durations := make(map[string]float64, len(release.Tracks))
	for _, t := range release.Tracks {
		if t.Number != nil {
			durations[strconv.Itoa(*t.Number)] = t.Duration
		}
	}

	title := release.Album()
	if title == "" {
		title = release.Title
	}
	pl := audio.Playlist{Title: title, Artist: release.Artist}
	for _, f := range files {
		pl.Entries = append(pl.Entries, audio.PlaylistEntry{
			Path:     f.Path,
			Title:    f.Context[model.KeyTitle],
			Duration: durations[f.Context[model.KeyTrackNumber]],
		})
	}

	ext := audio.ParsePlaylistFormat(m.settings.PlaylistFormat).Extension()
	name := naming.SanitizeSegment(title+ext, m.naming)
	path := filepath.Join(filepath.Dir(files[0].Path), name)
	if err := ioutils.WriteFile(m.fs, path, []byte(m.playlist.CreatePlaylist(pl))); err != nil {
		return "", err
	}
	return path, nil
}

// trackOrder sorts files without a track number last.
func trackOrder(f model.PlacedFile) int {
	n, err := strconv.Atoi(f.Context[model.KeyTrackNumber])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
