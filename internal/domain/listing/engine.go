package listing

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	DefaultPageSize       = 20
	DefaultFolderPageSize = 1000
)

// ErrStale is returned when a fetch completes after its query was replaced.
var ErrStale = errors.New("listing result superseded by a newer query")

// Source fetches listing pages from the backend.
type Source interface {
	FetchListing(ctx context.Context, path string, page, size int) (*types.ListingPage, error)
	FetchListingByTags(ctx context.Context, tagIDs []int64, matchAll bool, page, size int) (*types.ListingPage, error)
}

// Query identifies what a listing shows.
type Query struct {
	Path     string
	Mode     types.BrowsingMode
	TagIDs   []int64
	MatchAll bool
}

func (q Query) clone() Query {
	q.TagIDs = append([]int64(nil), q.TagIDs...)
	return q
}

// State is the lifecycle state of an Engine.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Snapshot is an immutable copy of the engine state.
type Snapshot struct {
	Query      Query
	Entries    []types.Entry
	Page       int
	TotalCount int64
	TotalPages int
	HasMore    bool
	State      State
	Generation uint64
	Err        error
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the page size of NORMAL and TAG_FILTER listings.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithFolderPageSize sets the page size used under FOLDER_SELECT.
func WithFolderPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.folderPageSize = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine holds the listing of one query at a time. It is safe for
// concurrent use; no lock is held across a fetch.
type Engine struct {
	src            Source
	pageSize       int
	folderPageSize int
	logger         *zap.Logger
	metrics        *monitoring.Metrics

	mu         sync.Mutex
	query      Query
	entries    []types.Entry
	page       int
	total      int64
	totalPages int
	hasMore    bool
	state      State
	generation uint64
	inFlight   bool
	err        error
}

// NewEngine creates an idle engine over src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:            src,
		pageSize:       DefaultPageSize,
		folderPageSize: DefaultFolderPageSize,
		logger:         zap.NewNop(),
		query:          Query{Path: "/", Mode: types.ModeNormal},
		hasMore:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchPage fetches one page of q without touching engine state. Under
// FOLDER_SELECT only directories are returned.
func (e *Engine) FetchPage(ctx context.Context, q Query, pageNumber int) (*types.ListingPage, error) {
	var (
		page *types.ListingPage
		err  error
	)
	switch q.Mode {
	case types.ModeTagFilter:
		if len(q.TagIDs) == 0 {
			return nil, &types.ValidationError{Field: "tagIds", Message: "select at least one tag"}
		}
		page, err = e.src.FetchListingByTags(ctx, q.TagIDs, q.MatchAll, pageNumber, e.pageSize)
	case types.ModeFolderSelect:
		page, err = e.src.FetchListing(ctx, q.Path, pageNumber, e.folderPageSize)
	default:
		page, err = e.src.FetchListing(ctx, q.Path, pageNumber, e.pageSize)
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &types.ListingPage{PageNumber: pageNumber}
	}
	if q.Mode == types.ModeFolderSelect {
		dirs := make([]types.Entry, 0, len(page.Records))
		for _, rec := range page.Records {
			if rec.IsDirectory {
				dirs = append(dirs, rec)
			}
		}
		filtered := *page
		filtered.Records = dirs
		filtered.TotalCount = int64(len(dirs))
		page = &filtered
	}
	return page, nil
}

// AppendPage concatenates incoming after existing, preserving order.
func AppendPage(existing, incoming []types.Entry) []types.Entry {
	out := make([]types.Entry, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	return append(out, incoming...)
}

// HasMore reports whether another page can be loaded after page.
func HasMore(mode types.BrowsingMode, page *types.ListingPage) bool {
	if mode == types.ModeFolderSelect {
		return false
	}
	return page.HasMore()
}

// Reset switches to q and starts a new generation. Current entries stay
// visible until the first page of q arrives.
func (e *Engine) Reset(q Query) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked(q)
}

func (e *Engine) resetLocked(q Query) uint64 {
	if q.Mode == "" {
		q.Mode = types.ModeNormal
	}
	e.query = q.clone()
	e.generation++
	e.inFlight = false
	e.page = 0
	e.hasMore = true
	e.state = StateIdle
	e.err = nil
	return e.generation
}

// Load fetches page 1 of the current query and replaces the entries. It is
// a no-op while a fetch of the same generation is in flight, and under
// TAG_FILTER with no tags.
func (e *Engine) Load(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	if e.query.Mode == types.ModeTagFilter && len(e.query.TagIDs) == 0 {
		defer e.mu.Unlock()
		return e.snapshotLocked(), nil
	}
	return e.fetch(ctx, 1, false)
}

// LoadMore fetches the next page and appends it. It is a no-op when no page
// follows, when a fetch is in flight, before the first page has loaded and
// under FOLDER_SELECT. A failed fetch leaves the page counter unchanged so
// the next call retries the same page.
func (e *Engine) LoadMore(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	if !e.hasMore || e.page < 1 || e.query.Mode == types.ModeFolderSelect {
		defer e.mu.Unlock()
		return e.snapshotLocked(), nil
	}
	return e.fetch(ctx, e.page+1, true)
}

// Refresh reloads page 1 of the current query under a new generation.
func (e *Engine) Refresh(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	e.resetLocked(e.query)
	e.mu.Unlock()
	return e.Load(ctx)
}

// fetch is entered with e.mu held and releases it.
func (e *Engine) fetch(ctx context.Context, pageNumber int, appending bool) (Snapshot, error) {
	if e.inFlight {
		defer e.mu.Unlock()
		return e.snapshotLocked(), nil
	}
	e.inFlight = true
	e.state = StateLoading
	gen := e.generation
	q := e.query.clone()
	e.mu.Unlock()

	e.logger.Debug("fetching listing page",
		zap.String("path", q.Path),
		zap.String("mode", string(q.Mode)),
		zap.Int("page", pageNumber),
		zap.Uint64("generation", gen))

	page, err := e.FetchPage(ctx, q, pageNumber)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		e.metrics.IncStaleResults()
		e.metrics.RecordListingFetch(string(q.Mode), "stale")
		e.logger.Debug("dropping stale listing result",
			zap.String("path", q.Path),
			zap.Uint64("generation", gen),
			zap.Uint64("current", e.generation))
		return e.snapshotLocked(), ErrStale
	}
	e.inFlight = false

	if err != nil {
		e.state = StateErrored
		e.err = err
		e.metrics.RecordListingFetch(string(q.Mode), "error")
		e.logger.Warn("listing fetch failed",
			zap.String("path", q.Path),
			zap.Int("page", pageNumber),
			zap.Error(err))
		return e.snapshotLocked(), err
	}

	if appending {
		e.entries = AppendPage(e.entries, page.Records)
	} else {
		e.entries = append([]types.Entry(nil), page.Records...)
	}
	e.page = pageNumber
	e.total = page.TotalCount
	e.totalPages = page.TotalPages
	e.hasMore = HasMore(q.Mode, page)
	e.state = StateLoaded
	e.err = nil
	e.metrics.RecordListingFetch(string(q.Mode), "ok")
	return e.snapshotLocked(), nil
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Query:      e.query.clone(),
		Entries:    append([]types.Entry(nil), e.entries...),
		Page:       e.page,
		TotalCount: e.total,
		TotalPages: e.totalPages,
		HasMore:    e.hasMore,
		State:      e.state,
		Generation: e.generation,
		Err:        e.err,
	}
}

// Query returns the current query.
func (e *Engine) Query() Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query.clone()
}

// Entries returns a copy of the loaded entries.
func (e *Engine) Entries() []types.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.Entry(nil), e.entries...)
}
