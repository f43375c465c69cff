package protocol

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyIntent_EchoesChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "subscribe", r.URL.Query().Get("hub.mode"))
		assert.Equal(t, "https://example.com/feed", r.URL.Query().Get("hub.topic"))
		assert.Equal(t, "3600", r.URL.Query().Get("hub.lease_seconds"))
		w.Write([]byte(r.URL.Query().Get("hub.challenge")))
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.VerifyIntent(context.Background(), server.URL, "subscribe", "https://example.com/feed", "challenge-token", 3600)
	require.NoError(t, err)
}

func TestVerifyIntent_WrongEcho(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-the-challenge"))
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.VerifyIntent(context.Background(), server.URL, "subscribe", "https://example.com/feed", "challenge-token", 3600)
	require.Error(t, err)
}

func TestVerifyIntent_Denied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.VerifyIntent(context.Background(), server.URL, "unsubscribe", "https://example.com/feed", "challenge-token", 0)
	require.Error(t, err)
}

func TestHubDeliver_SignsPayload(t *testing.T) {
	payload := []byte(`{"type":["h-feed"]}`)
	secret := "subscriber-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, payload, body)

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
		assert.Equal(t, expected, r.Header.Get("X-Hub-Signature"))
		assert.Contains(t, r.Header.Get("Link"), `rel="hub"`)
		assert.Contains(t, r.Header.Get("Link"), `rel="self"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://example.com/feed", payload, "application/mf2+json", secret)
	require.NoError(t, err)
}

func TestHubDeliver_UnsignedWithoutSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Hub-Signature"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://example.com/feed", []byte("{}"), "application/mf2+json", "")
	require.NoError(t, err)
}

func TestHubDeliver_SubscriberFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHubClient(testConfig(t), discardLogger())

	err := client.Deliver(context.Background(), server.URL, "https://example.com/feed", []byte("{}"), "application/mf2+json", "secret")
	require.Error(t, err)
}
