package audio

import (
	"errors"
	"io"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// Probed holds tags already present in a file.
type Probed struct {
	// TrackNumber is 0 when absent.
	TrackNumber int
	Title       string
	Artist      string
	Album       string
}

// Prober reads embedded tags.
type Prober interface {
	Probe(fs afero.Fs, path string) (Probed, error)
}

// TagProber reads tags with github.com/dhowden/tag.
type TagProber struct{}

// Probe reads the tags of the file at path. A file without any recognised
// tag yields a zero Probed and no error.
func (TagProber) Probe(fs afero.Fs, path string) (Probed, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Probed{}, err
	}
	defer f.Close()

	return probe(f)
}

func probe(r io.ReadSeeker) (Probed, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Probed{}, nil
		}
		return Probed{}, err
	}

	track, _ := m.Track()
	return Probed{
		TrackNumber: track,
		Title:       m.Title(),
		Artist:      m.Artist(),
		Album:       m.Album(),
	}, nil
}
