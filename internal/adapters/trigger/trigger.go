// Package trigger calls the API's saved-search batch endpoint on behalf of
// the scheduler.
package trigger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campus_rentals/internal/adapters/httpx"
	"campus_rentals/internal/app"
)

const endpoint = "process_saved_searches"

type Client struct {
	url  string
	http *httpx.Client
}

type response struct {
	Success bool          `json:"success"`
	Report  app.RunReport `json:"report"`
}

// New returns a client for url authenticated with the shared cron secret.
// timeout must cover a whole notifier run.
func New(url, secret string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, errors.New("trigger url is required")
	}
	if secret == "" {
		return nil, errors.New("cron secret is required")
	}
	return &Client{
		url: url,
		http: httpx.New("scheduler", httpx.Options{
			Timeout: timeout,
			RPS:     1,
			Headers: map[string]string{"Authorization": "Bearer " + secret},
		}),
	}, nil
}

// Run fires one batch and returns the API's report.
func (c *Client) Run(ctx context.Context) (app.RunReport, error) {
	var out response
	if err := c.http.Do(ctx, http.MethodPost, c.url, endpoint, nil, &out); err != nil {
		return app.RunReport{}, err
	}
	if !out.Success {
		return out.Report, errors.New("batch reported failure")
	}
	return out.Report, nil
}
