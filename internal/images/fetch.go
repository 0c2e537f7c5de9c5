// Package images fetches product image bytes from the image storage
// collaborator.
package images

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mvirta/productgen/internal/provider"
)

// Fetcher downloads image bytes over HTTP.
type Fetcher struct {
	httpClient *resty.Client
}

// FetcherOpts configure a Fetcher.
type FetcherOpts struct {
	BaseURL string
}

// NewFetcher creates an image fetcher.
func NewFetcher(opts FetcherOpts) *Fetcher {
	c := resty.New().SetHeader("Accept", "image/*")
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	return &Fetcher{httpClient: c}
}

// Fetch downloads one image and returns its bytes and mime type. The mime
// type comes from the Content-Type header, falling back to sniffing the
// bytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	res, err := f.httpClient.NewRequest().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	if res.IsError() {
		return nil, "", fmt.Errorf("image fetch failed: GET %s (status: %d)", url, res.StatusCode())
	}

	data := res.Body()
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image fetch returned empty body: %s", url)
	}

	mimeType := res.Header().Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	return data, mimeType, nil
}

// FetchAll downloads all urls concurrently, preserving order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]provider.ImageInput, error) {
	images := make([]provider.ImageInput, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i := range urls {
		i := i
		g.Go(func() error {
			data, mimeType, err := f.Fetch(ctx, urls[i])
			if err != nil {
				log.Error().Err(err).Str("url", urls[i]).Msg("failed to fetch image")
				return err
			}
			images[i] = provider.ImageInput{Data: data, MimeType: mimeType}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
