// Package testutil provides testing utilities for the photo gallery client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Photo mirrors the wire shape of the photo API.
type Photo struct {
	AlbumID      int    `json:"albumId"`
	ID           int    `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// MockResponse defines the behavior for a canned response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPhotoAPI is a configurable in-process photo API. Without overrides it
// serves its photo collection with json-server semantics:
// /photos?_page=N&_limit=M and /photos/{id}.
type MockPhotoAPI struct {
	server        *httptest.Server
	mu            sync.RWMutex
	photos        []Photo
	handlers      map[string]http.HandlerFunc
	pageResponses map[int]MockResponse

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastQuery         url.Values
}

// NewMockPhotoAPI creates a mock serving the given photos in order.
func NewMockPhotoAPI(photos ...Photo) *MockPhotoAPI {
	mock := &MockPhotoAPI{
		photos:        photos,
		handlers:      make(map[string]http.HandlerFunc),
		pageResponses: make(map[int]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = r.URL.Query()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// GeneratePhotos returns n photos with ids 1..n, 50 per album, like the
// public API's fixture data.
func GeneratePhotos(n int) []Photo {
	photos := make([]Photo, n)
	for i := range photos {
		id := i + 1
		color := fmt.Sprintf("%06x", id*7919%0xffffff)
		photos[i] = Photo{
			AlbumID:      (id-1)/50 + 1,
			ID:           id,
			Title:        fmt.Sprintf("photo %d", id),
			URL:          "https://via.placeholder.com/600/" + color,
			ThumbnailURL: "https://via.placeholder.com/150/" + color,
		}
	}
	return photos
}

// URL returns the mock server URL.
func (m *MockPhotoAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockPhotoAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPhotoAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPhotoAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockPhotoAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, resp.write)
}

// SetPageResponse configures a canned response for one _page of /photos.
func (m *MockPhotoAPI) SetPageResponse(page int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageResponses[page] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPhotoAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the query of the most recent request.
func (m *MockPhotoAPI) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockPhotoAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

func (m *MockPhotoAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/photos":
		m.listHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/photos/"):
		m.detailHandler(w, r)
	default:
		writeJSON(w, http.StatusNotFound, struct{}{})
	}
}

func (m *MockPhotoAPI) listHandler(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r.URL.Query(), "_page", 1)
	limit := queryInt(r.URL.Query(), "_limit", 10)

	m.mu.RLock()
	canned, ok := m.pageResponses[page]
	total := len(m.photos)
	start := (page - 1) * limit
	end := start + limit
	if start > total || start < 0 {
		start = total
	}
	if end > total {
		end = total
	}
	pageItems := append([]Photo{}, m.photos[start:end]...)
	m.mu.RUnlock()

	if ok {
		canned.write(w, r)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, pageItems)
}

func (m *MockPhotoAPI) detailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/photos/"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.photos {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

func (resp MockResponse) write(w http.ResponseWriter, _ *http.Request) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// PhotosJSON encodes photos as the API would.
func PhotosJSON(photos ...Photo) string {
	if photos == nil {
		photos = []Photo{}
	}
	data, _ := json.Marshal(photos)
	return string(data)
}

// NewJSONResponse creates a 200 OK response with the given body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a json-server style 404.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>gateway page</html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}
