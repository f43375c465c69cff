package protocol

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"plume/config"
	"plume/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Site: &config.SiteConfig{BaseURL: "https://example.com", Name: "Example"},
	}
	cfg.ApplyDefaults()
	// Keep retries tight so failure paths stay fast in tests.
	cfg.WebMention.DeliveryRetries = 2
	cfg.WebMention.DeliveryBackoff = time.Millisecond
	cfg.WebMention.FetchTimeout = 5 * time.Second
	cfg.WebSub.DeliveryTimeout = 5 * time.Second

	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscoverEndpoint_LinkHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `</mention-endpoint>; rel="webmention"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	endpoint, err := client.DiscoverEndpoint(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/mention-endpoint", endpoint)
}

func TestDiscoverEndpoint_HTMLBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.Method == http.MethodGet {
			w.Write([]byte(`<html><head><link rel="webmention" href="/wm"></head><body></body></html>`))
		}
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	endpoint, err := client.DiscoverEndpoint(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/wm", endpoint)
}

func TestDiscoverEndpoint_NoEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	endpoint, err := client.DiscoverEndpoint(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, endpoint)
}

func TestDeliver_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://source.example/post", r.Form.Get("source"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://source.example/post", "https://target.example/post", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDeliver_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://source.example/a", "https://target.example/b", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeliver_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://source.example/a", "https://target.example/b", "")
	require.Error(t, err)
	// Initial attempt plus the configured retries.
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliver_SendsVouch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://vouch.example/page", r.Form.Get("vouch"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewMentionClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://source.example/a", "https://target.example/b", "https://vouch.example/page")
	require.NoError(t, err)
}

func TestLinksBack_HTML(t *testing.T) {
	client := NewMentionClient(testConfig(t), discardLogger())

	page := &service.SourcePage{
		URL:         "https://source.example/post",
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(`<html><body><a href="/local">local</a> <a href="https://target.example/entry">reply</a></body></html>`),
	}

	assert.True(t, client.LinksBack(page, "https://target.example/entry"))
	assert.False(t, client.LinksBack(page, "https://target.example/other"))
}

func TestLinksBack_RelativeLink(t *testing.T) {
	client := NewMentionClient(testConfig(t), discardLogger())

	page := &service.SourcePage{
		URL:         "https://target.example/replies/1",
		ContentType: "text/html",
		Body:        []byte(`<a href="/entry">back home</a>`),
	}

	assert.True(t, client.LinksBack(page, "https://target.example/entry"))
}

func TestLinksBack_PlainText(t *testing.T) {
	client := NewMentionClient(testConfig(t), discardLogger())

	page := &service.SourcePage{
		URL:         "https://source.example/note",
		ContentType: "text/plain",
		Body:        []byte("read this: https://target.example/entry"),
	}

	assert.True(t, client.LinksBack(page, "https://target.example/entry"))
	assert.False(t, client.LinksBack(page, "https://target.example/missing"))
}

func TestExtractLinks(t *testing.T) {
	client := NewMentionClient(testConfig(t), discardLogger())

	links := client.ExtractLinks("https://example.com/post/1",
		`<p>see <a href="https://other.example/a">a</a>, <a href="/post/2">mine</a> and <a href="mailto:x@example.com">mail</a></p>`)

	assert.Equal(t, []string{"https://other.example/a", "https://example.com/post/2"}, links)
}
