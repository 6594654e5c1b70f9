package model

import (
	"testing"
)

func intPtr(n int) *int { return &n }

func TestSortTracks(t *testing.T) {
	tracks := []Track{
		{Number: intPtr(3), Title: "third"},
		{Number: nil, Title: "bonus"},
		{Number: intPtr(1), Title: "first"},
		{Number: intPtr(2), Title: "second"},
	}

	SortTracks(tracks)

	want := []string{"first", "second", "third", "bonus"}
	for i, w := range want {
		if tracks[i].Title != w {
			t.Errorf("tracks[%d].Title = %q, want %q", i, tracks[i].Title, w)
		}
	}
}

func TestRelease_Album(t *testing.T) {
	tests := []struct {
		name    string
		release Release
		want    string
	}{
		{
			name:    "album uses its title",
			release: Release{ItemType: ItemTypeAlbum, Title: "Album", AlbumTitle: "ignored"},
			want:    "Album",
		},
		{
			name:    "single uses from-album label",
			release: Release{ItemType: ItemTypeTrack, Title: "Song", AlbumTitle: "Parent"},
			want:    "Parent",
		},
		{
			name:    "standalone single has no album",
			release: Release{ItemType: ItemTypeTrack, Title: "Song"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.release.Album(); got != tt.want {
				t.Errorf("Album() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelease_TrackTitles(t *testing.T) {
	r := Release{Tracks: []Track{
		{Number: intPtr(1), Title: "One"},
		{Number: nil, Title: "Hidden"},
		{Number: intPtr(2), Title: "Two"},
	}}

	titles := r.TrackTitles()
	if len(titles) != 2 {
		t.Fatalf("len(TrackTitles()) = %d, want 2", len(titles))
	}
	if titles[2] != "Two" {
		t.Errorf("titles[2] = %q, want %q", titles[2], "Two")
	}
}

func TestRenderContext_WithoutSeparators(t *testing.T) {
	ctx := RenderContext{
		KeyTitle:  "AC/DC cover",
		KeyArtist: `back\slash`,
	}

	got := ctx.WithoutSeparators("/", `\`)

	if got[KeyTitle] != "AC-DC cover" {
		t.Errorf("title = %q, want %q", got[KeyTitle], "AC-DC cover")
	}
	if got[KeyArtist] != "back-slash" {
		t.Errorf("artist = %q, want %q", got[KeyArtist], "back-slash")
	}
	if ctx[KeyTitle] != "AC/DC cover" {
		t.Error("WithoutSeparators must not modify the receiver")
	}
}

func TestDownloadOutcome_Merge(t *testing.T) {
	var out DownloadOutcome
	out.Paths = append(out.Paths, "/dl/flac")

	var previews DownloadOutcome
	previews.AddTrackFile("/dl/01.mp3", Track{Number: intPtr(1), Title: "One"})

	out.Merge(previews)

	if len(out.Paths) != 2 {
		t.Fatalf("len(Paths) = %d, want 2", len(out.Paths))
	}
	if got := out.Tracks["/dl/01.mp3"].Title; got != "One" {
		t.Errorf("Tracks[/dl/01.mp3].Title = %q, want %q", got, "One")
	}
	if _, ok := out.Tracks["/dl/flac"]; ok {
		t.Error("archive path must not carry a track")
	}
}
