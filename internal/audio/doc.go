// Package audio reads and writes audio file metadata and builds playlists.
//
// # Tag handlers
//
// Codecs maps file extensions to tag handlers. Each Handler exposes the
// same setters regardless of the container format:
//
//	h, err := audio.DefaultCodecs().Open("/music/Artist/Album/01 Intro.flac")
//	if errors.Is(err, audio.ErrUnsupported) {
//	    // skip this file
//	}
//	defer h.Close()
//	h.SetArtist("Artist")
//	h.SetTrackNumber(1)
//	err = h.Save()
//
// Supported formats:
//   - MP3 (ID3v2 frames)
//   - FLAC (Vorbis comments)
//
// # Probing
//
// Probe reads tags already embedded in a downloaded file, which is how the
// placement step learns the track number and title of files from an archive.
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(playlist)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
