// Package metadata tags downloaded audio files with data read from their
// release page.
//
// The Extractor fetches the page again and reads each field through a
// cascade of selectors, so a single missing element only leaves that field
// empty:
//
//	meta, err := metadata.NewExtractor(client, logger).Extract(ctx, releaseURL)
//
// The release year is taken from the first source that yields a year in
// [1950, 2030]: the "released" line of the credits, the release-date meta
// tag, the page data blob, JSON-LD datePublished, year literals in the page
// and finally a copyright notice.
//
// MatchTrack pairs a file with a track listing entry, and the Writer puts
// everything together:
//
//	tally := metadata.NewWriter(audio.DefaultCodecs(), logger).Write(paths, meta, nil)
//	fmt.Printf("%d written, %d failed\n", tally.Written, tally.Failed)
package metadata
