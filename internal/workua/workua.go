// Package workua talks to the work.ua resume catalog. The site has no API,
// so both the listing search and the resume pages are scraped from HTML.
package workua

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	siteURL     = "https://www.work.ua"
	resumesPath = "/resumes/"

	// The site rejects requests without a browser-like user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

func New(logger *zap.Logger) *Client {
	return &Client{
		logger:  logger,
		BaseURL: siteURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}
}

// get issues a single GET request with the client headers applied. The
// response body is not consumed here; callers own closing it.
func (c *Client) get(ctx context.Context, url string, query string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	if query != "" {
		req.URL.RawQuery = query
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", req.URL.String(), err)
	}

	return resp, nil
}
