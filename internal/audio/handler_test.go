package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flacFrame is the start of an audio frame; the parser requires its sync code.
var flacFrame = []byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00}

// minimalFLAC returns a FLAC stream holding a STREAMINFO block, optionally
// followed by a vorbis comment block, and one frame header.
func minimalFLAC(comments ...string) []byte {
	return append(flacHeaders(comments...), flacFrame...)
}

// flacHeaders returns the metadata blocks of minimalFLAC without any frames.
func flacHeaders(comments ...string) []byte {
	out := []byte("fLaC")
	last := byte(0x80)
	if len(comments) > 0 {
		last = 0
	}
	out = append(out, last|0x00, 0, 0, 34)
	out = append(out, make([]byte, 34)...)

	if len(comments) > 0 {
		var body []byte
		body = binary.LittleEndian.AppendUint32(body, uint32(len("test")))
		body = append(body, "test"...)
		body = binary.LittleEndian.AppendUint32(body, uint32(len(comments)))
		for _, c := range comments {
			body = binary.LittleEndian.AppendUint32(body, uint32(len(c)))
			body = append(body, c...)
		}
		n := len(body)
		out = append(out, 0x80|0x04, byte(n>>16), byte(n>>8), byte(n))
		out = append(out, body...)
	}
	return out
}

func readTags(t *testing.T, path string) tag.Metadata {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	m, err := tag.ReadFrom(f)
	require.NoError(t, err)
	return m
}

func writeAll(t *testing.T, h Handler) {
	t.Helper()
	h.SetArtist("Artist")
	h.SetAlbum("Album")
	h.SetYear("2021")
	h.SetTitle("Intro")
	h.SetTrackNumber(3)
	require.NoError(t, h.Save())
	require.NoError(t, h.Close())
}

func TestCodecs_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.mp3")
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 60)...)
	require.NoError(t, os.WriteFile(path, frame, 0644))

	h, err := DefaultCodecs().Open(path)
	require.NoError(t, err)
	assert.True(t, h.Supports(FieldTrackNumber))
	writeAll(t, h)

	m := readTags(t, path)
	assert.Equal(t, "Artist", m.Artist())
	assert.Equal(t, "Album", m.Album())
	assert.Equal(t, "Intro", m.Title())
	track, _ := m.Track()
	assert.Equal(t, 3, track)
}

func TestCodecs_FLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	require.NoError(t, os.WriteFile(path, minimalFLAC("TITLE=old", "COMMENT=keep me"), 0644))

	h, err := DefaultCodecs().Open(path)
	require.NoError(t, err)
	writeAll(t, h)

	m := readTags(t, path)
	assert.Equal(t, "Artist", m.Artist())
	assert.Equal(t, "Album", m.Album())
	assert.Equal(t, "Intro", m.Title())
	track, _ := m.Track()
	assert.Equal(t, 3, track)
	assert.Equal(t, "keep me", m.Raw()["comment"])
}

func TestCodecs_FLACWithoutComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "02.FLAC")
	require.NoError(t, os.WriteFile(path, minimalFLAC(), 0644))

	h, err := DefaultCodecs().Open(path)
	require.NoError(t, err)
	writeAll(t, h)

	m := readTags(t, path)
	assert.Equal(t, "Intro", m.Title())
}

func TestCodecs_FLACWithoutFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "03.flac")
	require.NoError(t, os.WriteFile(path, flacHeaders("TITLE=old"), 0644))

	var err error
	require.NotPanics(t, func() {
		_, err = DefaultCodecs().Open(path)
	})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFLACHandler_RejectedCommentFailsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "04.flac")
	original := minimalFLAC("TITLE=old")
	require.NoError(t, os.WriteFile(path, original, 0644))

	opened, err := openFLAC(path)
	require.NoError(t, err)
	h := opened.(*flacHandler)
	h.SetTitle("Intro")
	h.set("BAD=KEY", "value")

	err = h.Save()
	assert.ErrorIs(t, err, flacvorbis.ErrorInvalidFieldName)
	assert.ErrorContains(t, err, "BAD=KEY")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data, "nothing is written when a comment was rejected")
}

func TestCodecs_Unsupported(t *testing.T) {
	_, err := DefaultCodecs().Open("/music/track.m4a")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestTagProber(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.flac", minimalFLAC("TRACKNUMBER=5", "TITLE=Five"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b.mp3", []byte("not really audio"), 0644))

	got, err := TagProber{}.Probe(fs, "/a.flac")
	require.NoError(t, err)
	assert.Equal(t, 5, got.TrackNumber)
	assert.Equal(t, "Five", got.Title)

	got, err = TagProber{}.Probe(fs, "/b.mp3")
	require.NoError(t, err)
	assert.Zero(t, got)
}
