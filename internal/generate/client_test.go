package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC)
}

func TestAC800_Generate_PostsWebhookPayload(t *testing.T) {
	var got Request
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestID = r.Header.Get(RequestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	refreshed := 0
	client := NewClient(server.URL, WithClock(fixedClock), OnDelivered(func() { refreshed++ }))
	receipt, err := client.Submit(context.Background(), " https://example.com/product ", content.TypeVideo)

	require.NoError(t, err)
	assert.Equal(t, Request{
		URL:         "https://example.com/product",
		ContentType: content.TypeVideo,
		Timestamp:   "2024-01-20T10:30:00.000Z",
		Source:      "url-generator",
	}, got)
	assert.Equal(t, receipt.RequestID, requestID)
	assert.Contains(t, receipt.Message, "video is being generated")
	assert.Equal(t, 1, refreshed, "user should see the gallery refresh after submitting")
}

func TestAC801_Generate_ResponseStatusIsNotInspected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	refreshed := false
	_, err := NewClient(server.URL, OnDelivered(func() { refreshed = true })).
		Submit(context.Background(), "https://example.com", content.TypeImage)

	assert.NoError(t, err)
	assert.True(t, refreshed)
}

func TestAC802_Generate_RejectsInvalidInputBeforeSending(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()
	client := NewClient(server.URL)

	tests := []struct {
		url         string
		contentType content.Type
		want        error
	}{
		{"", content.TypeImage, ErrURLRequired},
		{"   ", content.TypeImage, ErrURLRequired},
		{"not a url", content.TypeImage, ErrInvalidURL},
		{"ftp://example.com/file", content.TypeImage, ErrInvalidURL},
		{"https://", content.TypeImage, ErrInvalidURL},
		{"https://example.com", content.TypeText, ErrInvalidContentType},
		{"https://example.com", content.Type("audio"), ErrInvalidContentType},
	}
	for _, tt := range tests {
		_, err := client.Submit(context.Background(), tt.url, tt.contentType)
		assert.ErrorIs(t, err, tt.want, "url %q type %q", tt.url, tt.contentType)
	}
	assert.Equal(t, 0, calls, "invalid submissions should never reach the webhook")
}

func TestAC803_Generate_MissingWebhook(t *testing.T) {
	_, err := NewClient("").Submit(context.Background(), "https://example.com", content.TypeImage)

	assert.ErrorIs(t, err, ErrWebhookNotConfigured)
}

type failingTransport struct{}

func (failingTransport) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestAC804_Generate_TransportFailureSkipsRefresh(t *testing.T) {
	refreshed := false
	client := NewClient("https://hooks.example.com/generate",
		WithHTTPClient(failingTransport{}),
		OnDelivered(func() { refreshed = true }))

	_, err := client.Submit(context.Background(), "https://example.com", content.TypeImage)

	assert.Error(t, err)
	assert.False(t, refreshed)
}
