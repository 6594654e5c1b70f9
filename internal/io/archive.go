package ioutils

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/xeptore/flaw/v8"
)

// ExtractZip extracts every regular file of the archive at zipPath directly
// into destDir and returns the written paths in archive order.
//
// Archive entries in subfolders are flattened: "Disc 1/01 Song.flac" becomes
// "Disc 1 - 01 Song.flac". Entries that would escape destDir are rejected.
func ExtractZip(fs afero.Fs, zipPath, destDir string) ([]string, error) {
	f, err := fs.Open(zipPath)
	if err != nil {
		return nil, flaw.From(fmt.Errorf("failed to open archive: %v", err)).Append(flaw.P{"archive": zipPath})
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, flaw.From(fmt.Errorf("failed to stat archive: %v", err)).Append(flaw.P{"archive": zipPath})
	}

	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, flaw.From(fmt.Errorf("failed to read archive: %v", err)).Append(flaw.P{"archive": zipPath})
	}

	if err := EnsureDir(fs, destDir); err != nil {
		return nil, flaw.From(err).Append(flaw.P{"dest_dir": destDir})
	}

	var out []string
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name, err := flattenEntryName(entry.Name)
		if err != nil {
			return out, flaw.From(err).Append(flaw.P{"archive": zipPath, "entry": entry.Name})
		}

		dst := filepath.Join(destDir, name)
		if err := extractEntry(fs, entry, dst); err != nil {
			return out, flaw.From(fmt.Errorf("failed to extract entry: %v", err)).Append(flaw.P{"archive": zipPath, "entry": entry.Name, "dst": dst})
		}
		out = append(out, dst)
	}
	return out, nil
}

func flattenEntryName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("unsafe archive entry %q", name)
	}
	return strings.ReplaceAll(clean, "/", " - "), nil
}

func extractEntry(fs afero.Fs, entry *zip.File, dst string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
