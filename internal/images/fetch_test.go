package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content-type sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n" + "rest-of-image")

func TestFetchUsesContentTypeHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	data, mimeType, err := f.Fetch(context.Background(), server.URL+"/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestFetchSniffsWhenHeaderIsNotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngHeader)
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	_, mimeType, err := f.Fetch(context.Background(), server.URL+"/photo")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	_, _, err := f.Fetch(context.Background(), server.URL+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	_, _, err := f.Fetch(context.Background(), server.URL+"/empty.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body")
}

func TestFetchWithBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/1.jpg", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{BaseURL: server.URL})
	data, _, err := f.Fetch(context.Background(), "/images/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestFetchAllPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprintf(w, "body-of%s", r.URL.Path)
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	urls := []string{server.URL + "/a", server.URL + "/b", server.URL + "/c"}
	images, err := f.FetchAll(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, []byte("body-of/a"), images[0].Data)
	assert.Equal(t, []byte("body-of/b"), images[1].Data)
	assert.Equal(t, []byte("body-of/c"), images[2].Data)
}

func TestFetchAllFailsWhenAnyFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOpts{})
	_, err := f.FetchAll(context.Background(), []string{server.URL + "/good", server.URL + "/bad"})
	require.Error(t, err)
}
