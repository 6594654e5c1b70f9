package ioutils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/xeptore/flaw/v8"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755)
}

// WriteFile writes data to a file, creating parent directories as needed.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(fs afero.Fs, path string, data []byte) error {
	if err := EnsureDir(fs, filepath.Dir(path)); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// MoveFile moves src to dst, creating dst's directory. An existing dst is
// replaced. When a rename is impossible (e.g. across devices) the file is
// copied and the source removed.
func MoveFile(fs afero.Fs, src, dst string) error {
	if err := EnsureDir(fs, filepath.Dir(dst)); err != nil {
		return flaw.From(err).Append(flaw.P{"dst": dst})
	}
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(fs, src, dst); err != nil {
		return flaw.From(err).Append(flaw.P{"src": src, "dst": dst})
	}
	if err := fs.Remove(src); err != nil {
		return flaw.From(err).Append(flaw.P{"src": src})
	}
	return nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// RemoveIfEmpty removes dir when it has no entries and reports whether it did.
func RemoveIfEmpty(fs afero.Fs, dir string) (bool, error) {
	exists, err := afero.Exists(fs, dir)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	return true, fs.Remove(dir)
}

var zipMagic = []byte("PK\x03\x04")

// IsZip reports whether the file at path starts with the zip local file header.
func IsZip(fs afero.Fs, path string) (bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, zipMagic), nil
}
