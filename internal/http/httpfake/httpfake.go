// Package httpfake routes requests for arbitrary hosts to an httptest server.
//
// Tests use it to serve fixtures for real platform URLs:
//
//	srv := httptest.NewServer(mux)
//	client, _ := http.NewClient(cfg, http.WithTransport(httpfake.Route(srv)))
//	client.Get(ctx, "https://artist.bandcamp.com/music") // handled by mux, r.Host == "artist.bandcamp.com"
package httpfake

import (
	"net/http"
	"net/http/httptest"
	"net/url"
)

// Route returns a round tripper that sends every request to srv while
// preserving the original Host header.
func Route(srv *httptest.Server) http.RoundTripper {
	target, err := url.Parse(srv.URL)
	if err != nil {
		panic(err)
	}
	return routeTransport{target: target, next: srv.Client().Transport}
}

type routeTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t routeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Host = req.URL.Host
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	resp, err := t.next.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	// Report the URL the caller asked for, not the fixture server's.
	resp.Request = req
	return resp, nil
}
