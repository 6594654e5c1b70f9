// Package http provides the page fetcher shared by every bandcamper component.
//
// The Client in this package handles:
//   - User-Agent and proxy configuration
//   - Query parameters and extra headers per request
//   - Typed status errors (see StatusError and IsStatus)
//   - Streaming downloads with retries and progress tracking
//
// # Basic Usage
//
//	client, err := http.NewClient(http.Config{UserAgent: "bandcamper", Timeout: time.Minute})
//
//	// Fetch HTML page
//	resp, err := client.Get(ctx, "https://artist.bandcamp.com/album/name")
//	if http.IsStatus(err, 404) {
//	    // release is gone
//	}
//	html := resp.Text()
//
//	// Query a JSON endpoint
//	resp, err = client.Get(ctx, statURL,
//	    http.WithParams(url.Values{".vrs": {"1"}}),
//	    http.WithHeader("Accept", "application/json"))
//
//	// Download file with progress callback
//	path, err := client.DownloadFile(ctx, fs, fileURL, "/music", "tmp-1234", "fallback.zip",
//	    func(written, total int64) {
//	        fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	    })
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
