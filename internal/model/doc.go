// Package model defines the core data structures shared by the
// acquisition pipeline of bandcamper.
//
// # Release
//
// Release is the download-oriented view of one catalog entry, built from the
// page's data-tralbum payload:
//
//	release, _ := extractor.Fetch(ctx, "https://artist.bandcamp.com/album/name")
//	fmt.Println(release.Artist, release.Title, release.ItemType)
//
// # AlbumMetadata
//
// AlbumMetadata is the tag-oriented view of the same page, produced by an
// independent and more defensive parse in package metadata.
//
// # RenderContext
//
// RenderContext holds the values a naming template can reference:
//
//	ctx := model.RenderContext{
//	    model.KeyArtist:      "Artist",
//	    model.KeyAlbum:       "Album",
//	    model.KeyTrackNumber: "7",
//	    model.KeyTitle:       "Song",
//	    model.KeyExt:         ".flac",
//	}
//
// Available placeholders: {artist}, {album}, {year}, {track_number}, {title},
// {bandcamp_url}, {ext} and, for non-audio files, {filename}.
package model
