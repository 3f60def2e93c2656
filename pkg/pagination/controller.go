package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/client"
	"github.com/Sternrassler/photo-gallery-client/pkg/logging"
	"github.com/Sternrassler/photo-gallery-client/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PhotoSource is the read side of the photo API the controller depends on.
// *client.Client implements it.
type PhotoSource interface {
	// ListPhotos returns one page; an empty page means no more pages.
	ListPhotos(ctx context.Context, page, limit int) ([]client.Photo, error)

	// GetPhoto returns a single photo by id.
	GetPhoto(ctx context.Context, id int) (client.Photo, error)
}

// Config holds controller configuration.
type Config struct {
	// Limit is the page size, fixed for the controller's lifetime.
	Limit int

	// OnChange, when set, receives a snapshot after every state transition.
	// It runs on the goroutine that caused the transition, without locks held.
	OnChange func(State)
}

// DefaultConfig returns a 24-item page, which fills the gallery grid.
func DefaultConfig() Config {
	return Config{
		Limit: client.DefaultPageLimit,
	}
}

// Controller owns the List State of one view session.
type Controller struct {
	source   PhotoSource
	limit    int
	onChange func(State)
	logger   zerolog.Logger

	mu          sync.Mutex
	sessionID   string
	items       []client.Photo
	seen        map[int]struct{}
	currentPage int
	loading     bool
	hasMore     bool
	err         error
}

// NewController creates a controller in the initial Idle state: page 1, no
// items, more pages assumed. A non-positive limit falls back to the default.
func NewController(source PhotoSource, cfg Config) *Controller {
	if cfg.Limit <= 0 {
		cfg.Limit = client.DefaultPageLimit
	}

	c := &Controller{
		source:   source,
		limit:    cfg.Limit,
		onChange: cfg.OnChange,
	}
	c.resetLocked()

	return c
}

// LoadNextPage fetches the current page and merges it into the List State.
// It returns false without doing anything when a fetch is already running.
//
// On a non-empty page the new photos are appended (ids already present are
// skipped) and the page number advances. On an empty page HasMore becomes
// false and the page number stays. On failure the error is recorded and
// items and page number stay as they were.
func (c *Controller) LoadNextPage(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.logger.Debug().Msg("Load already in flight, ignoring trigger")
		return false
	}
	c.loading = true
	c.err = nil
	page := c.currentPage
	logger := c.logger
	started := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(started)

	startTime := time.Now()
	photos, err := c.source.ListPhotos(ctx, page, c.limit)
	elapsed := time.Since(startTime)

	c.mu.Lock()
	c.loading = false
	switch {
	case err != nil:
		c.err = err
		metrics.PagesLoaded.WithLabelValues("error").Inc()
		logger.Warn().
			Err(err).
			Int("page", page).
			Str("error_class", string(client.ClassOf(err))).
			Dur("duration", elapsed).
			Msg("Page load failed")

	case len(photos) == 0:
		c.hasMore = false
		metrics.PagesLoaded.WithLabelValues("empty").Inc()
		logger.Info().
			Int("page", page).
			Int("items", len(c.items)).
			Msg("Photo list exhausted")

	default:
		added := c.mergeLocked(photos)
		c.currentPage++
		c.hasMore = true
		metrics.PagesLoaded.WithLabelValues("page").Inc()
		logger.Info().
			Int("page", page).
			Int("limit", c.limit).
			Int("received", len(photos)).
			Int("added", added).
			Int("items", len(c.items)).
			Dur("duration", elapsed).
			Msg("Photo page loaded")
	}
	finished := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(finished)

	return true
}

// mergeLocked appends photos whose id is not yet loaded and returns how
// many were added.
func (c *Controller) mergeLocked(photos []client.Photo) int {
	added := 0
	for _, p := range photos {
		if _, dup := c.seen[p.ID]; dup {
			metrics.DuplicatesSkipped.Inc()
			c.logger.Debug().Int("photo_id", p.ID).Msg("Skipping duplicate photo")
			continue
		}
		c.seen[p.ID] = struct{}{}
		c.items = append(c.items, p)
		added++
	}
	return added
}

// LoadPhotoDetail fetches a single photo. Errors from the source are
// returned unchanged and the List State is never touched.
func (c *Controller) LoadPhotoDetail(ctx context.Context, id int) (client.Photo, error) {
	photo, err := c.source.GetPhoto(ctx, id)
	if err != nil {
		c.mu.Lock()
		logger := c.logger
		c.mu.Unlock()
		logger.Debug().Err(err).Int("photo_id", id).Msg("Photo detail load failed")
		return client.Photo{}, err
	}
	return photo, nil
}

// Reset discards the List State and starts a new session, as when a view
// unmounts and mounts again. It returns false while a fetch is running.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	c.resetLocked()
	st := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(st)
	return true
}

func (c *Controller) resetLocked() {
	c.sessionID = uuid.NewString()
	c.items = nil
	c.seen = make(map[int]struct{})
	c.currentPage = 1
	c.loading = false
	c.hasMore = true
	c.err = nil
	c.logger = log.With().
		Str("component", logging.ComponentController).
		Str("session_id", c.sessionID).
		Logger()
}

// State returns a snapshot of the List State.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	items := make([]client.Photo, len(c.items))
	copy(items, c.items)
	return State{
		SessionID:   c.sessionID,
		Items:       items,
		CurrentPage: c.currentPage,
		IsLoading:   c.loading,
		HasMore:     c.hasMore,
		Err:         c.err,
	}
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

// Limit returns the page size.
func (c *Controller) Limit() int {
	return c.limit
}

// IsLoading reports whether a list fetch is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// HasMore reports whether further pages may exist.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Err returns the error of the last list fetch.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
