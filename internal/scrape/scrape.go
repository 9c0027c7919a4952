// Package scrape reads tab search results and tab pages from Ultimate
// Guitar and song lyrics from Genius.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrUnauthorized means the site rejected our credentials. Retrying
	// other songs cannot succeed.
	ErrUnauthorized = errors.New("scrape: unauthorized")
	// ErrNoData means the page loaded but carried nothing we could extract.
	ErrNoData = errors.New("scrape: no data in page")
)

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Cache stores raw response bodies by key. *cache.Store satisfies it.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, body []byte) error
}

// get fetches u and returns the body of a 2xx response.
func get(ctx context.Context, c *http.Client, u string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, u)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return b, nil
}

// cachedGet serves u from cache when possible and stores fresh bodies.
// Cache failures never fail the request.
func cachedGet(ctx context.Context, c *http.Client, cache Cache, key, u string, header http.Header) ([]byte, error) {
	if cache != nil {
		if body, hit, err := cache.Get(key); err == nil && hit {
			return body, nil
		}
	}
	body, err := get(ctx, c, u, header)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		_ = cache.Put(key, body)
	}
	return body, nil
}

// flexFloat accepts a JSON number, a numeric string, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable ratings count as zero.
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

var _ json.Unmarshaler = (*flexFloat)(nil)
