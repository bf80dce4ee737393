package email

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
)

func TestResendClient_Send(t *testing.T) {
	var got struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL + "/"})
	id, err := c.Send(context.Background(), Message{
		From:    "Event Q&A <noreply@example.com>",
		To:      "dana@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", id)
	assert.Equal(t, []string{"dana@example.com"}, got.To)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "<p>hi</p>", got.HTML)
}

func TestResendClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"internal"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	_, err := c.Send(context.Background(), Message{To: "x@example.com"})
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Contains(t, upstream.Error(), "500")
	assert.Contains(t, upstream.Body, "internal")
}

func TestResendClient_MissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL})
	_, err := c.Send(context.Background(), Message{To: "x@example.com"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestResendClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Send(context.Background(), Message{To: "x@example.com"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResendClient_UpstreamErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	_, err := c.Send(context.Background(), Message{To: "x@example.com"})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestResendClient_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	_, err := c.Send(context.Background(), Message{To: "x@example.com"})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.Equal(t, "Invalid from field", upstream.Body)
}
