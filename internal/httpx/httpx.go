// Package httpx builds the HTTP client used to talk to external tab and
// lyrics sites: a fixed User-Agent, a total timeout and bounded retry.
package httpx

import (
	"errors"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36"
)

// Transport applies the client policy to every request. Only replayable
// requests (GET/HEAD without a body) are retried, on network errors and
// on 429/5xx responses.
type Transport struct {
	Base http.RoundTripper

	UserAgent string

	// RetryMax is the number of retries after the first attempt.
	RetryMax int

	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	retries := max(t.RetryMax, 0)
	if !canRetry {
		retries = 0
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 && !t.wait(req, attempt) {
			if lastErr == nil {
				lastErr = req.Context().Err()
			}
			return nil, lastErr
		}
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}

		resp, lastErr = base.RoundTrip(r)
		if lastErr == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if req.Context().Err() != nil {
			break
		}
		if lastErr == nil && attempt < retries {
			// Retrying: release the connection of the discarded response.
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

// wait sleeps before the given retry attempt; false when the request's
// context ended first.
func (t *Transport) wait(req *http.Request, attempt int) bool {
	if t.Backoff <= 0 {
		return req.Context().Err() == nil
	}
	timer := time.NewTimer(t.Backoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// NewClient returns a client with the given User-Agent, total timeout and
// retry count. Zero values select the defaults; a negative retry count
// disables retry.
func NewClient(userAgent string, timeout time.Duration, retries int) *http.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries == 0 {
		retries = DefaultRetries
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSHandshakeTimeout = 10 * time.Second
	base.ResponseHeaderTimeout = 20 * time.Second

	return &http.Client{
		Transport: &Transport{
			Base:      base,
			UserAgent: userAgent,
			RetryMax:  retries,
			Backoff:   500 * time.Millisecond,
		},
		Timeout: timeout,
	}
}
