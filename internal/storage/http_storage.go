package storage

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"
)

const (
	fetchAttempts  = 3
	userAgent      = "Go-Doc-Enhancer/1.0"
	acceptedImages = "image/png, image/jpeg, image/tiff, image/bmp, image/webp, image/gif, */*"
)

// HTTPImageFetcher downloads images over HTTP(S). Transient failures (network
// errors and 5xx responses) are retried; 4xx responses are not.
type HTTPImageFetcher struct {
	client     *http.Client
	maxBytes   int64
	limits     fetchLimits
	retryDelay time.Duration
}

// NewHTTPImageFetcher creates an HTTP image fetcher. Bodies larger than maxBytes
// are rejected; maxBytes <= 0 disables the limit.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64, opts ...FetchOption) *HTTPImageFetcher {
	transport := &http.Transport{
		// Connection pooling sized for one-image-per-request traffic
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes:   maxBytes,
		limits:     newFetchLimits(opts),
		retryDelay: time.Second,
	}
}

// FetchImage downloads and decodes imageURL
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", acceptedImages)
	req.Header.Set("User-Agent", userAgent)

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.retryDelay):
			}
		}

		img, retryable, err := h.fetchOnce(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", fetchAttempts, lastErr)
}

// fetchOnce performs a single request and reports whether a failure is worth retrying
func (h *HTTPImageFetcher) fetchOnce(req *http.Request) (image.Image, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if h.maxBytes > 0 {
		if resp.ContentLength > h.maxBytes {
			return nil, false, fmt.Errorf("image too large: %d bytes (limit %d)", resp.ContentLength, h.maxBytes)
		}
		body = io.LimitReader(resp.Body, h.maxBytes)
	}

	img, _, err := DecodeImage(body, h.limits.maxPixels)
	if err != nil {
		return nil, false, err
	}
	return img, false, nil
}
