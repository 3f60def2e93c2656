// Package client provides the HTTP client for the public photo API: listing
// a page of photos and fetching a single photo by id.
//
// The client is stateless between calls. It never retries and never caches;
// every failure is returned as an *APIError classified as network, not
// found, decode, client or server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/logging"
	"github.com/Sternrassler/photo-gallery-client/pkg/metrics"
	"github.com/Sternrassler/photo-gallery-client/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the public photo API.
	DefaultBaseURL = "http://jsonplaceholder.typicode.com"

	// DefaultUserAgent is sent when the caller keeps DefaultConfig.
	DefaultUserAgent = "photo-gallery-client/0.1.0"

	// Route templates, used as metric labels.
	routeListPhotos = "/photos"
	routeGetPhoto   = "/photos/{id}"
)

// Client is the photo API client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, e.g. "http://jsonplaceholder.typicode.com".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per request. Zero leaves the transport defaults in charge.
	Timeout time.Duration

	// RateLimit in requests per second. Zero disables pacing.
	RateLimit int

	// HTTPClient replaces the default http.Client when set.
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration for the public photo API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
	}
}

// New creates a new photo API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must be >= 0 (got %d)", cfg.RateLimit)
	}

	logger := log.With().Str("component", logging.ComponentClient).Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    ratelimit.NewLimiter(cfg.RateLimit, logger),
		config:     cfg,
		logger:     logger,
	}, nil
}

// ListPhotos fetches one page of the photo collection:
// GET {base}/photos?_page={page}&_limit={limit}.
// An empty slice means the page lies beyond the end of the collection.
func (c *Client) ListPhotos(ctx context.Context, page, limit int) ([]Photo, error) {
	return c.ListPhotosPage(ctx, PageRequest{Page: page, Limit: limit})
}

// ListPhotosPage is ListPhotos taking a PageRequest.
func (c *Client) ListPhotosPage(ctx context.Context, pr PageRequest) ([]Photo, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("_page", strconv.Itoa(pr.Page))
	query.Set("_limit", strconv.Itoa(pr.Limit))

	var photos []Photo
	if err := c.getJSON(ctx, routeListPhotos, "/photos", query, &photos); err != nil {
		return nil, err
	}

	// "null" decodes without error but is not an array.
	if photos == nil {
		return nil, c.fail(routeListPhotos, &APIError{
			Class:      ErrorClassDecode,
			StatusCode: http.StatusOK,
			Endpoint:   "/photos",
			Message:    "expected a JSON array of photos, got null",
		})
	}

	for i, p := range photos {
		if err := p.Validate(); err != nil {
			return nil, c.fail(routeListPhotos, &APIError{
				Class:      ErrorClassDecode,
				StatusCode: http.StatusOK,
				Endpoint:   "/photos",
				Message:    fmt.Sprintf("record %d is not a photo", i),
				Err:        err,
			})
		}
	}

	c.logger.Debug().
		Int("page", pr.Page).
		Int("limit", pr.Limit).
		Int("items", len(photos)).
		Msg("Photo page fetched")

	return photos, nil
}

// GetPhoto fetches a single photo: GET {base}/photos/{id}.
func (c *Client) GetPhoto(ctx context.Context, id int) (Photo, error) {
	if id <= 0 {
		return Photo{}, fmt.Errorf("%w: photo id must be > 0 (got %d)", ErrInvalidArgument, id)
	}

	path := "/photos/" + strconv.Itoa(id)

	var photo Photo
	if err := c.getJSON(ctx, routeGetPhoto, path, nil, &photo); err != nil {
		return Photo{}, err
	}

	if err := photo.Validate(); err != nil {
		return Photo{}, c.fail(routeGetPhoto, &APIError{
			Class:      ErrorClassDecode,
			StatusCode: http.StatusOK,
			Endpoint:   path,
			Message:    "response is not a photo",
			Err:        err,
		})
	}

	return photo, nil
}

// getJSON performs a GET against path and decodes a 2xx body into out.
// route is the path template used as the metric label.
func (c *Client) getJSON(ctx context.Context, route, path string, query url.Values, out any) error {
	startTime := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(route, &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: path,
			Message:  "request not sent",
			Err:      err,
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path, query), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", path).
		Str("url", req.URL.String()).
		Msg("Executing photo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(route, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
		return c.fail(route, &APIError{
			Class:    classifyError(nil, err),
			Endpoint: path,
			Message:  "request failed",
			Err:      err,
		})
	}
	defer resp.Body.Close()

	metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		class := classifyError(resp, nil)
		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Photo API request error")

		return c.fail(route, &APIError{
			Class:      class,
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    resp.Status,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(route, &APIError{
			Class:      ErrorClassNetwork,
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "read response body",
			Err:        err,
		})
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", path).Msg("Malformed photo API response")
		return c.fail(route, &APIError{
			Class:      ErrorClassDecode,
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    "decode response body",
			Err:        err,
		})
	}

	return nil
}

// fail records the error metric and returns err unchanged.
func (c *Client) fail(route string, err *APIError) error {
	metrics.ErrorsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Debug().
		Str("endpoint", route).
		Str("class", string(err.Class)).
		Msg("Error classified")
	return err
}

// resolve joins the base URL with path and query.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

// classifyError categorizes a transport error or a non-2xx response.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrorClassNotFound
	case resp.StatusCode >= 300 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
