package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, retries int) *Client {
	t.Helper()
	c, err := NewClient(Config{UserAgent: "test-agent", MaxRetries: retries, RetryCooldown: time.Millisecond})
	require.NoError(t, err)
	return c
}

func TestClient_GetParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "1", r.URL.Query().Get(".vrs"))
		assert.Equal(t, "keep", r.URL.Query().Get("existing"))
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, 0)
	resp, err := c.Get(context.Background(), srv.URL+"/stat?existing=keep",
		WithParams(url.Values{".vrs": {"1"}}),
		WithHeader("Accept", "application/json"))
	require.NoError(t, err)

	var body struct{ Result string }
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, "ok", body.Result)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestClient(t, 0).Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "none", r.PostForm.Get("encoding_name"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, 0).PostForm(context.Background(), srv.URL, url.Values{"encoding_name": {"none"}})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text())
}

func TestClient_DownloadFile_Extension(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		disposition string
		fallback    string
		want        string
	}{
		{name: "content disposition", path: "/download", disposition: `attachment; filename="Artist - Album.zip"`, fallback: "x.mp3", want: "/out/tmp.zip"},
		{name: "url path", path: "/files/track.FLAC", fallback: "x.mp3", want: "/out/tmp.flac"},
		{name: "fallback name", path: "/stream/abc", fallback: "01.mp3", want: "/out/tmp.mp3"},
		{name: "nothing", path: "/stream/abc", want: "/out/tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				_, _ = w.Write([]byte("payload"))
			}))
			defer srv.Close()

			fs := afero.NewMemMapFs()
			got, err := newTestClient(t, 0).DownloadFile(context.Background(), fs, srv.URL+tt.path, "/out", "tmp", tt.fallback, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			data, err := afero.ReadFile(fs, got)
			require.NoError(t, err)
			assert.Equal(t, "payload", string(data))
		})
	}
}

func TestClient_DownloadFile_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var written int64
	_, err := newTestClient(t, 5).DownloadFile(context.Background(), afero.NewMemMapFs(), srv.URL+"/a.mp3", "/out", "a", "", func(w, _ int64) {
		written = w
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(2), written)
}

func TestClient_DownloadFile_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(t, 5).DownloadFile(context.Background(), afero.NewMemMapFs(), srv.URL, "/out", "a", "", nil)
	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient_InvalidProxy(t *testing.T) {
	_, err := NewClient(Config{Proxy: "://bad"})
	assert.Error(t, err)
}

func TestProgressWriter(t *testing.T) {
	var updates []int64
	pw := &ProgressWriter{
		Writer:   &nopWriter{},
		Total:    10,
		OnUpdate: func(written, _ int64) { updates = append(updates, written) },
	}
	_, _ = pw.Write([]byte("abc"))
	_, _ = pw.Write([]byte("defg"))
	assert.Equal(t, []int64{3, 7}, updates)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
