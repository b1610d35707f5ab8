// Package csvstore implements cookies.Store on top of a single CSV file.
//
// The Handler keeps the file's contents cached in a Table and rewrites the
// whole file after every mutation. Reads reload the cache from disk, so the
// file is the one authority and the cache never serves stale rows. All
// operations on one Handler are serialized by its mutex. Separate Handlers
// (or processes) pointed at the same file are not coordinated.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
	"github.com/artpar/crumbs/internal/logging"
)

// Extension is the required suffix of the backing file, compared case-insensitively.
const Extension = ".csv"

// Operation names reported in cookies.HandlingError.
const (
	OpStore     = "store"
	OpGet       = "get"
	OpList      = "list"
	OpRemove    = "remove"
	OpRemoveAll = "remove all"
	OpCount     = "count"
)

// Handler implements cookies.Store using a CSV file.
type Handler struct {
	mu     sync.Mutex
	path   string
	files  *FileStore
	cache  *Table
	logger *slog.Logger
	now    func() time.Time
	closed bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp cookies that carry no timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithCodec replaces the CSV row codec.
func WithCodec(codec RowCodec) Option {
	return func(h *Handler) {
		h.files = NewFileStore(codec)
	}
}

var _ cookies.Store = (*Handler)(nil)

// New creates a handler for the CSV file at path. The file is not touched
// until the first operation.
func New(path string, opts ...Option) (*Handler, error) {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("%w: cookie file %q must have a %s extension", cookies.ErrInvalidConfig, path, Extension)
	}

	h := &Handler{
		path:   path,
		files:  NewFileStore(nil),
		cache:  NewTable(),
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("file", path)

	return h, nil
}

// Path returns the backing file path.
func (h *Handler) Path() string {
	return h.path
}

// Set stores a cookie, replacing any cookie with the same name, domain and
// path, and rewrites the backing file.
//
// When Set fails at the write step the cache already holds the new cookie;
// an error means the change may not be durable, not that it was rejected.
func (h *Handler) Set(ctx context.Context, cookie *cookies.Cookie) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return h.fail(OpStore, err)
	}
	if cookie == nil {
		return h.fail(OpStore, errors.New("nil cookie"))
	}
	if err := h.hydrate(); err != nil {
		return h.fail(OpStore, err)
	}

	r := RecordFromCookie(cookie, h.now())
	if err := h.cache.Upsert(r); err != nil {
		return h.fail(OpStore, err)
	}
	if err := h.files.Save(h.cache, h.path); err != nil {
		return h.fail(OpStore, err)
	}

	h.logger.Debug("cookie stored", "cookie", r.Key().String(), "count", h.cache.Len())
	return nil
}

// Get returns the cookie with the given key, or cookies.ErrNotFound.
func (h *Handler) Get(ctx context.Context, name, domain, path string) (*cookies.Cookie, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return nil, h.fail(OpGet, err)
	}
	if err := h.refresh(); err != nil {
		return nil, h.fail(OpGet, err)
	}

	r, ok := h.cache.Get(cookies.Key{Name: name, Domain: domain, Path: path})
	if !ok {
		return nil, h.fail(OpGet, cookies.ErrNotFound)
	}
	return r.Cookie(), nil
}

// List reloads the backing file and returns every cookie in it. A missing
// file yields an empty slice.
func (h *Handler) List(ctx context.Context) ([]*cookies.Cookie, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return nil, h.fail(OpList, err)
	}
	if err := h.refresh(); err != nil {
		return nil, h.fail(OpList, err)
	}

	records := h.cache.All()
	result := make([]*cookies.Cookie, 0, len(records))
	for _, r := range records {
		result = append(result, r.Cookie())
	}
	return result, nil
}

// Delete removes the cookie with the given key and rewrites the backing file.
// It fails with cookies.ErrNothingToRemove when the file does not exist; a
// key that is not stored is otherwise ignored.
func (h *Handler) Delete(ctx context.Context, name, domain, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return h.fail(OpRemove, err)
	}
	if !h.files.Exists(h.path) {
		return h.fail(OpRemove, cookies.ErrNothingToRemove)
	}
	if err := h.hydrate(); err != nil {
		return h.fail(OpRemove, err)
	}

	key := cookies.Key{Name: name, Domain: domain, Path: path}
	removed := h.cache.Delete(key)
	if err := h.files.Save(h.cache, h.path); err != nil {
		return h.fail(OpRemove, err)
	}

	h.logger.Debug("cookie removed", "cookie", key.String(), "found", removed)
	return nil
}

// Clear deletes the backing file and empties the cache.
func (h *Handler) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return h.fail(OpRemoveAll, err)
	}
	if err := h.files.DeleteFile(h.path); err != nil {
		return h.fail(OpRemoveAll, err)
	}
	h.cache.Reset()

	h.logger.Debug("cookie file cleared")
	return nil
}

// Count returns the number of cookies in the backing file.
func (h *Handler) Count(ctx context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ready(ctx); err != nil {
		return 0, h.fail(OpCount, err)
	}
	if err := h.refresh(); err != nil {
		return 0, h.fail(OpCount, err)
	}
	return int64(h.cache.Len()), nil
}

// Close marks the handler closed. The backing file is left in place.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}

func (h *Handler) ready(ctx context.Context) error {
	if h.closed {
		return cookies.ErrStoreClosed
	}
	return ctx.Err()
}

// hydrate loads the backing file into an empty cache. A populated cache is
// kept as is.
func (h *Handler) hydrate() error {
	if h.cache.Len() > 0 || !h.files.Exists(h.path) {
		return nil
	}
	table, err := h.files.Load(h.path)
	if err != nil {
		return err
	}
	h.cache = table
	h.logger.Debug("cookie cache hydrated", "count", table.Len())
	return nil
}

// refresh replaces the cache with the current file contents.
func (h *Handler) refresh() error {
	table, err := h.files.Load(h.path)
	if err != nil {
		return err
	}
	h.cache = table
	return nil
}

func (h *Handler) fail(op string, err error) error {
	if !errors.Is(err, cookies.ErrNotFound) {
		h.logger.Warn("cookie operation failed", "op", op, "error", err)
	}
	return &cookies.HandlingError{Op: op, Err: err}
}
