package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github/itish2003/invoicechat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder_Embed(t *testing.T) {
	var got models.OllamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.OllamaEmbedResponse{Embedding: []float32{1, 2, 3}})
	}))
	defer srv.Close()

	embedding, err := NewOllamaEmbedder(srv.Client(), srv.URL+"/", "nomic-embed-text:v1.5").Embed(context.Background(), "total due")
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 2, 3}, embedding)
	assert.Equal(t, "nomic-embed-text:v1.5", got.Model)
	assert.Equal(t, "total due", got.Prompt)
}

func TestOllamaEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}, "non-200 status: 404"},
		{"error field", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"out of memory"}`))
		}, "out of memory"},
		{"empty embedding", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"embedding":[]}`))
		}, "empty embedding"},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{`))
		}, "decode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewOllamaEmbedder(srv.Client(), srv.URL, "m").Embed(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
