// Package download provides the acquisition logic for fetching Bandcamp
// releases.
//
// # Engine
//
// The Engine picks one strategy per release, in this order:
//
//  1. Free download page: every requested format is resolved through its
//     stat endpoint and streamed; zip archives are extracted
//  2. Email-gated: a disposable address is submitted and the mailbox is
//     polled until the download link arrives, then as above
//  3. Preview streams: when fallback is allowed, each track's embedded
//     mp3-128 stream is saved as "<artist> - <album> - <NN> <title>.mp3"
//
// With none applicable, Acquire fails with ErrNoFreeDownload. Formats that
// are missing or fail are collected in DownloadOutcome.Skipped.
//
// # Manager
//
// The Manager coordinates the entire pipeline:
//
//  1. Resolve identifiers into release URLs
//  2. Fetch release information from Bandcamp
//  3. Download with the Engine
//  4. Move files into place with the naming templates
//  5. Tag audio files with metadata read from the release page
//  6. Save cover.png and, optionally, a playlist
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, platform, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report := manager.Run(ctx, []string{"examplelabel", "https://artist.bandcamp.com/album/name"})
//	fmt.Printf("%d succeeded, %d failed\n", report.Succeeded, report.Failed)
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Front-ends may also poll Manager.Progress for counters and the state of
// the file being streamed.
//
// # Retry Logic
//
// Failed streams are retried with a linear cooldown, configurable via
// settings.DownloadMaxRetries and settings.DownloadRetryCooldown.
package download
