// Package ioutils provides file system and image processing utilities.
//
// Every function takes an afero.Fs so the pipeline can run against the real
// disk (afero.NewOsFs) or an in-memory filesystem in tests.
//
// This package contains functions for:
//   - Moving files across directories and devices
//   - Directory creation and cleanup
//   - Zip detection and extraction
//   - Cover art conversion to PNG
//
// # File Operations
//
//	fs := afero.NewOsFs()
//
//	// Move a file, creating the destination directory
//	err := ioutils.MoveFile(fs, "/tmp/abc.mp3", "/music/Artist/Album/01 Intro.mp3")
//
//	// Remove a directory once it is empty
//	removed, err := ioutils.RemoveIfEmpty(fs, "/music/abc")
//
// # Archives
//
//	if ok, _ := ioutils.IsZip(fs, path); ok {
//	    files, err := ioutils.ExtractZip(fs, path, "/music/abc")
//	}
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//	png, err := svc.ToPNG(jpegData, 1200)
package ioutils
