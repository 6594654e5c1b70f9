package download

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	ioutils "github.com/handiism/bandcamper/internal/io"
	"github.com/handiism/bandcamper/internal/model"
)

// CoverFileName is the name of the artwork file written next to a release.
const CoverFileName = "cover.png"

// SaveCover writes the release artwork as cover.png in the directory of the
// first placed file. An existing cover is kept without fetching anything;
// the boolean reports whether a file was written.
//
// The artwork is re-encoded as PNG, scaled down to maxSize when positive.
// Artwork that cannot be decoded is stored as fetched.
func (e *Engine) SaveCover(ctx context.Context, coverURL string, placed []model.PlacedFile, maxSize int) (string, bool, error) {
	if coverURL == "" || len(placed) == 0 {
		return "", false, nil
	}

	path := filepath.Join(filepath.Dir(placed[0].Path), CoverFileName)
	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return path, false, err
	}
	if exists {
		return path, false, nil
	}

	resp, err := e.client.Get(ctx, coverURL)
	if err != nil {
		return path, false, fmt.Errorf("fetch cover art: %w", err)
	}

	data, err := e.images.ToPNG(resp.Body, maxSize)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", coverURL).Msg("Cover art is not a decodable image, keeping original bytes")
		data = resp.Body
	}
	if err := ioutils.WriteFile(e.fs, path, data); err != nil {
		return path, false, fmt.Errorf("write cover art: %w", err)
	}
	return path, true, nil
}
