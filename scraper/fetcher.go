// scraper/fetcher.go
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the source answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: HTTP status %d", e.URL, e.StatusCode)
}

// Fetcher downloads the bulletin page.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher builds a fetcher with a request timeout and user agent.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &Fetcher{client: client}
}

// FetchPage GETs url and returns the body. Network errors and non-2xx
// statuses are both fatal to the caller.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.String(), nil
}
