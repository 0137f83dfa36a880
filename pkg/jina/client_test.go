package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	want := SearchResponse{
		Code: 200,
		Data: []SearchResult{
			{
				Title:       "Nike Pegasus review",
				URL:         "https://x.com/runner/status/1",
				Content:     "Best daily trainer I have owned",
				Description: "post",
			},
		},
		Meta: SearchMeta{Usage: SearchUsage{Tokens: 812}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/Nike running shoes", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-Respond-With"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "Nike running shoes")

	require.NoError(t, err)
	assert.Equal(t, want.Code, got.Code)
	require.Len(t, got.Data, 1)
	assert.Equal(t, want.Data[0].Title, got.Data[0].Title)
	assert.Equal(t, want.Data[0].URL, got.Data[0].URL)
	assert.Equal(t, 812, got.Meta.Usage.Tokens)
}

func TestSearch_Options(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "x.com", r.URL.Query().Get("site"))
		assert.Equal(t, "5", r.URL.Query().Get("num"))
		assert.Equal(t, "no-content", r.Header.Get("X-Respond-With"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Code: 200, Data: []SearchResult{}}) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "test query",
		WithSiteFilter("x.com"), WithCount(5), WithoutContent())

	require.NoError(t, err)
	assert.Equal(t, 200, got.Code)
}

func TestSearch_CountCapsResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := make([]SearchResult, 8)
		for i := range data {
			data[i] = SearchResult{URL: "https://example.com"}
		}
		json.NewEncoder(w).Encode(SearchResponse{Code: 200, Data: data}) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "q", WithCount(3))
	require.NoError(t, err)
	assert.Len(t, got.Data, 3)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "obscure")
	require.NoError(t, err)
	assert.Equal(t, 422, got.Code)
	assert.Empty(t, got.Data)
}

func TestSearch_HTTPErrorNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "test query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSearch_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "test query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSearch_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(ctx, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search request failed")
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("my-key")
	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, "https://s.jina.ai", hc.searchBaseURL)
	assert.NotNil(t, hc.http)
	assert.Equal(t, 30*time.Second, hc.http.Timeout)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}
	c := NewClient("test-key", WithHTTPClient(customClient))
	hc := c.(*httpClient)
	assert.Equal(t, customClient, hc.http)
}
