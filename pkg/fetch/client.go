package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ratelimit"
)

// Client performs browser-like HTTP GETs and maps failures onto error kinds
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Pacer
	logger     logger.Logger
}

// NewClient creates a new HTTP client sending the given user agent
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetLimiter installs a pacer consulted before every request
func (c *Client) SetLimiter(p ratelimit.Pacer) {
	c.limiter = p
}

// SetTransport replaces the underlying round tripper
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, errs.New(errs.KindNetwork, req.URL.String(), err)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.KindNetwork, req.URL.String(), err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request. The caller owns the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Newf(errs.KindUnknown, url, "failed to create request: %v", err)
	}

	return c.doRequest(req)
}

// Fetch performs a GET request and returns the body of a 2xx response
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(url, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Kind:    errs.KindNetwork,
			URL:     url,
			Code:    resp.StatusCode,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	return body, nil
}

// checkResponseStatus returns nil for 2xx and a kinded error otherwise
func (c *Client) checkResponseStatus(url string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	err := errs.FromStatus(url, resp.StatusCode)
	c.logger.WarnWithFields("unexpected response status", map[string]interface{}{
		"status": resp.StatusCode,
		"url":    url,
		"kind":   string(err.Kind),
	})
	return err
}
