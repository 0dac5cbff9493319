package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_SendsInstructionAndImage(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G'}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var body struct {
			Model    string        `json:"model"`
			Messages []ChatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gemini-test", body.Model)
		require.Len(t, body.Messages, 1)
		parts := body.Messages[0].Content
		require.Len(t, parts, 2)
		assert.Equal(t, "text", parts[0].Type)
		assert.Equal(t, "read it", parts[0].Text)
		assert.Equal(t, "image_url", parts[1].Type)
		assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(img), parts[1].ImageURL.URL)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"E = mc^2\nline two"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(5 * time.Second)
	text, err := client.Transcribe(context.Background(), ChatConfig{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "key-1",
		Model:   "gemini-test",
	}, "read it", img)

	require.NoError(t, err)
	assert.Equal(t, "E = mc^2\nline two", text)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(0)
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: srv.URL}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "429"))
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(0)
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: srv.URL}, nil)
	assert.ErrorIs(t, err, ErrEmptyChoices)
}

func TestComplete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewOpenAICompatibleClient(time.Second)
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: url}, nil)
	assert.Error(t, err)
}
