package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEmbedding_EmptyTextFails(t *testing.T) {
	e := New(WithAPIKey("test-key"))
	_, err := e.GetEmbedding(context.Background(), "")
	require.Error(t, err)
}

func TestGetEmbedding_EmptyResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"text-embedding-3-small","usage":{"prompt_tokens":0,"total_tokens":0}}`))
	}))
	defer srv.Close()

	e := New(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	vec, err := e.GetEmbedding(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty embedding")
	require.Nil(t, vec)
}

func TestGetDimensions(t *testing.T) {
	require.Equal(t, DefaultDimensions, New(WithAPIKey("test-key")).GetDimensions())
	require.Equal(t, 768, New(WithAPIKey("test-key"), WithDimensions(768)).GetDimensions())
}
