package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sternrassler/photo-gallery-client/internal/testutil"
)

// newTestClient creates a client pointed at baseURL.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "default config",
			config:      DefaultConfig(),
			expectError: false,
		},
		{
			name: "https with path prefix",
			config: Config{
				BaseURL:   "https://example.com/api/",
				UserAgent: "TestApp/1.0.0",
			},
			expectError: false,
		},
		{
			name:        "empty base url",
			config:      Config{UserAgent: "TestApp/1.0.0"},
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name:        "relative base url",
			config:      Config{BaseURL: "/photos", UserAgent: "TestApp/1.0.0"},
			expectError: true,
			errorMsg:    `base url must be an absolute http(s) url (got "/photos")`,
		},
		{
			name:        "unsupported scheme",
			config:      Config{BaseURL: "ftp://example.com", UserAgent: "TestApp/1.0.0"},
			expectError: true,
			errorMsg:    `base url must be an absolute http(s) url (got "ftp://example.com")`,
		},
		{
			name:        "empty user agent",
			config:      Config{BaseURL: DefaultBaseURL},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "negative rate limit",
			config:      Config{BaseURL: DefaultBaseURL, UserAgent: "TestApp/1.0.0", RateLimit: -1},
			expectError: true,
			errorMsg:    "rate_limit must be >= 0 (got -1)",
		},
		{
			name:        "negative timeout",
			config:      Config{BaseURL: DefaultBaseURL, UserAgent: "TestApp/1.0.0", Timeout: -time.Second},
			expectError: true,
			errorMsg:    "timeout must be >= 0 (got -1s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should not be empty")
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (transport default)", cfg.Timeout)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %d, want 0", cfg.RateLimit)
	}
}

func TestBaseURL_TrailingSlash(t *testing.T) {
	c := newTestClient(t, "https://example.com/api/")
	if got := c.BaseURL(); got != "https://example.com/api" {
		t.Errorf("BaseURL() = %q, want %q", got, "https://example.com/api")
	}
	if got := c.resolve("/photos", nil); got != "https://example.com/api/photos" {
		t.Errorf("resolve() = %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"network error", 0, io.EOF, ErrorClassNetwork},
		{"not found 404", 404, nil, ErrorClassNotFound},
		{"client error 400", 400, nil, ErrorClassClient},
		{"client error 429", 429, nil, ErrorClassClient},
		{"unfollowed redirect 304", 304, nil, ErrorClassClient},
		{"server error 500", 500, nil, ErrorClassServer},
		{"server error 503", 503, nil, ErrorClassServer},
		{"success 200", 200, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			if result := classifyError(resp, tt.err); result != tt.expected {
				t.Errorf("classifyError() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestListPhotos(t *testing.T) {
	mock := testutil.NewMockPhotoAPI(testutil.GeneratePhotos(5)...)
	defer mock.Close()

	c := newTestClient(t, mock.URL())
	ctx := context.Background()

	photos, err := c.ListPhotos(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}

	if len(photos) != 2 || photos[0].ID != 3 || photos[1].ID != 4 {
		t.Errorf("ListPhotos(2, 2) = %+v, want ids 3,4", photos)
	}

	q := mock.GetLastQuery()
	if q.Get("_page") != "2" || q.Get("_limit") != "2" {
		t.Errorf("query = %v, want _page=2&_limit=2", q)
	}

	h := mock.GetLastRequestHeader()
	if h.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", h.Get("User-Agent"), DefaultUserAgent)
	}
	if h.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q, want application/json", h.Get("Accept"))
	}
}

func TestListPhotos_EmptyPage(t *testing.T) {
	mock := testutil.NewMockPhotoAPI(testutil.GeneratePhotos(3)...)
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	photos, err := c.ListPhotos(context.Background(), 5, 24)
	if err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}
	if photos == nil || len(photos) != 0 {
		t.Errorf("ListPhotos() = %#v, want empty non-nil slice", photos)
	}
}

func TestListPhotos_InvalidArguments(t *testing.T) {
	mock := testutil.NewMockPhotoAPI()
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	for _, pr := range []PageRequest{{Page: 0, Limit: 24}, {Page: 1, Limit: 0}} {
		_, err := c.ListPhotosPage(context.Background(), pr)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ListPhotosPage(%+v) error = %v, want ErrInvalidArgument", pr, err)
		}
	}

	if mock.GetRequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0 (no I/O for invalid arguments)", mock.GetRequestCount())
	}
}

func TestListPhotos_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response testutil.MockResponse
		sentinel error
		class    ErrorClass
	}{
		{"malformed body", testutil.NewMalformedResponse(), ErrDecode, ErrorClassDecode},
		{"object instead of array", testutil.NewJSONResponse(`{"id": 1}`), ErrDecode, ErrorClassDecode},
		{"null body", testutil.NewJSONResponse(`null`), ErrDecode, ErrorClassDecode},
		{"wrong field type", testutil.NewJSONResponse(`[{"id": "one", "url": "u", "thumbnailUrl": "t"}]`), ErrDecode, ErrorClassDecode},
		{"record without id", testutil.NewJSONResponse(`[{"title": "x", "url": "u", "thumbnailUrl": "t"}]`), ErrDecode, ErrorClassDecode},
		{"server error", testutil.NewServerErrorResponse(), ErrUnexpectedStatus, ErrorClassServer},
		{"not found", testutil.NewNotFoundResponse(), ErrNotFound, ErrorClassNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockPhotoAPI()
			defer mock.Close()
			mock.SetPageResponse(1, tt.response)

			c := newTestClient(t, mock.URL())

			photos, err := c.ListPhotos(context.Background(), 1, 24)
			if err == nil {
				t.Fatalf("ListPhotos() = %+v, want error", photos)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if ClassOf(err) != tt.class {
				t.Errorf("ClassOf() = %q, want %q", ClassOf(err), tt.class)
			}
			if mock.GetRequestCount() != 1 {
				t.Errorf("RequestCount = %d, want 1 (no retry)", mock.GetRequestCount())
			}
		})
	}
}

func TestListPhotos_NetworkError(t *testing.T) {
	// Reserve a port and close it so the connection is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := newTestClient(t, "http://"+addr)

	_, err = c.ListPhotos(context.Background(), 1, 24)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Err == nil {
		t.Error("network APIError should wrap the transport error")
	}
}

func TestListPhotos_Timeout(t *testing.T) {
	mock := testutil.NewMockPhotoAPI()
	defer mock.Close()
	resp := testutil.NewJSONResponse(`[]`)
	resp.Delay = 200 * time.Millisecond
	mock.SetPageResponse(1, resp)

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.Timeout = 20 * time.Millisecond
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.ListPhotos(context.Background(), 1, 24)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestGetPhoto(t *testing.T) {
	mock := testutil.NewMockPhotoAPI(testutil.GeneratePhotos(3)...)
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	photo, err := c.GetPhoto(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetPhoto() error = %v", err)
	}
	if photo.ID != 2 || photo.Title != "photo 2" {
		t.Errorf("GetPhoto(2) = %+v", photo)
	}
	if photo.ThumbnailURL == "" || photo.URL == "" {
		t.Errorf("GetPhoto(2) missing urls: %+v", photo)
	}
}

func TestGetPhoto_NotFound(t *testing.T) {
	mock := testutil.NewMockPhotoAPI(testutil.GeneratePhotos(3)...)
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	_, err := c.GetPhoto(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
		}
		if apiErr.Endpoint != "/photos/9999" {
			t.Errorf("Endpoint = %q, want /photos/9999", apiErr.Endpoint)
		}
	}
}

func TestGetPhoto_InvalidID(t *testing.T) {
	mock := testutil.NewMockPhotoAPI()
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	for _, id := range []int{0, -1} {
		if _, err := c.GetPhoto(context.Background(), id); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("GetPhoto(%d) error = %v, want ErrInvalidArgument", id, err)
		}
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0", mock.GetRequestCount())
	}
}

func TestGetPhoto_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"empty object", `{}`},
		{"array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockPhotoAPI()
			defer mock.Close()
			mock.SetResponse("/photos/1", testutil.NewJSONResponse(tt.body))

			c := newTestClient(t, mock.URL())

			if _, err := c.GetPhoto(context.Background(), 1); !errors.Is(err, ErrDecode) {
				t.Errorf("error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestSetHTTPClient(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetHTTPClient(&http.Client{Timeout: 5 * time.Second})

	if _, err := c.ListPhotos(context.Background(), 1, 1); err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestRateLimitedClient_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockPhotoAPI(testutil.GeneratePhotos(2)...)
	defer mock.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.RateLimit = 1
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.ListPhotos(ctx, 1, 1); err != nil {
		t.Fatalf("first ListPhotos() error = %v", err)
	}

	cancel()
	_, err = c.ListPhotos(ctx, 2, 1)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want to wrap context.Canceled", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", mock.GetRequestCount())
	}
}
