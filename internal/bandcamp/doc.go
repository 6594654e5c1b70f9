// Package bandcamp resolves identifiers into release URLs and extracts
// release data from release pages.
//
// The package handles two main use cases:
//
//  1. Resolving subdomains, artist URLs and release URLs (Resolver)
//  2. Parsing release pages into model.Release values (Extractor)
//
// # Resolving
//
//	r := bandcamp.NewResolver(client, platform)
//	urls, err := r.Resolve(ctx, "someband")
//	// https://someband.bandcamp.com/album/first, https://someband.bandcamp.com/track/single, ...
//
// Custom domains are accepted when they resolve to the platform's
// custom-domain address; lookups are cached for an hour.
//
// # Release Page Parsing
//
//	ex := bandcamp.NewExtractor(client)
//	release, err := ex.Fetch(ctx, "https://someband.bandcamp.com/album/first")
//	if errors.Is(err, bandcamp.ErrNotFound) {
//	    // release removed
//	}
//
// # Bandcamp Data Format
//
// Bandcamp embeds release data as JSON in the HTML page within a
// `data-tralbum` attribute. This package extracts and parses that JSON,
// handling Bandcamp's non-standard date format and fixing malformed JSON.
package bandcamp
