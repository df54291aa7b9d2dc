package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewProvider(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewProvider_Defaults(t *testing.T) {
	p, err := NewProvider(Config{APIKey: "sk-test"})

	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, p.endpoint)
	assert.Equal(t, DefaultModel, p.ModelName())
}

func TestProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello"}, req.Input)
		assert.Equal(t, 256, req.Dimensions)

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,-0.5]}]}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{APIKey: "sk-test", Endpoint: server.URL + "/v1", Dimensions: 256})
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.5}, vec)
}

func TestProvider_Embed_OmitsDimensionsForLegacyModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, has := req["dimensions"]
		assert.False(t, has)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{
		APIKey: "sk-test", Endpoint: server.URL, Model: "text-embedding-ada-002", Dimensions: 256,
	})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestProvider_Embed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{APIKey: "bad", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
	assert.Contains(t, err.Error(), "401")
}

func TestProvider_Embed_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	p, err := NewProvider(Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hello")

	assert.ErrorContains(t, err, "502")
}

func TestProvider_Embed_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hello")

	assert.ErrorContains(t, err, "no embedding")
}

func TestProvider_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	good, err := NewProvider(Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)
	assert.NoError(t, good.Ping(context.Background()))

	bad, err := NewProvider(Config{APIKey: "wrong", Endpoint: server.URL})
	require.NoError(t, err)
	assert.ErrorContains(t, bad.Ping(context.Background()), "401")
}
