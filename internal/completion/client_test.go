package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsNonStreamingRequest(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","response":"Hola","done":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	text, err := c.Generate(context.Background(), "llama3", "translate Hello")
	require.NoError(t, err)

	assert.Equal(t, "Hola", text)
	assert.Equal(t, generateRequest{Model: "llama3", Stream: false, Prompt: "translate Hello"}, got)
}

func TestGenerateRawReturnsBodyVerbatim(t *testing.T) {
	body := `{"response":"Alien\nHeat\n","done":true}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL, time.Second).GenerateRaw(context.Background(), "m", "p")
	require.NoError(t, err)
	assert.Equal(t, body, raw)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"not json", http.StatusOK, `<html>`},
		{"missing response", http.StatusOK, `{"done":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), "m", "p")
			assert.Error(t, err)
		})
	}
}

func TestGenerateRawUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).GenerateRaw(context.Background(), "m", "p")
	assert.Error(t, err)
}
