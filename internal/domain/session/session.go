package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/listing"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/operations"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// Default bridge deadlines.
const (
	DefaultUploadTimeout  = 5 * time.Minute
	DefaultSaveTimeout    = 30 * time.Second
	DefaultSearchPageSize = 20
)

// API is the backend surface a session drives.
type API interface {
	listing.Source
	operations.Fetcher
	ExecuteOperation(ctx context.Context, opType string, payload types.Payload) (string, error)
	UploadFile(ctx context.Context, r io.Reader, name, contentType, targetPath string) error
	GetFileContent(ctx context.Context, path string) (string, error)
	SaveFileContent(ctx context.Context, path, content string) error
	CreateDirectory(ctx context.Context, path string) error
	SearchFiles(ctx context.Context, keyword string, page, size int) (*types.ListingPage, error)
	DownloadURL(path string) string
}

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string, targets []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, title, message string, targets []string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, title, message string, targets []string) (bool, error) {
	return f(ctx, title, message, targets)
}

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Navigation     navigation.Options
	PageSize       int
	FolderPageSize int
	SearchPageSize int
	UploadTimeout  time.Duration
	SaveTimeout    time.Duration
	Logger         *zap.Logger
	Metrics        *monitoring.Metrics
}

// Session is one user's browsing context.
type Session struct {
	api       API
	confirmer Confirmer
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	uploadTimeout  time.Duration
	saveTimeout    time.Duration
	searchPageSize int

	Catalogue *operations.Catalogue
	Listing   *listing.Engine
	Navigator *navigation.Navigator

	mu          sync.Mutex
	multiSelect bool
	selection   []types.Entry
	tagIDs      []int64
	matchAll    bool
	pending     *PendingForm
	search      *SearchResults
}

// New creates a session. Nothing is fetched until Start or a navigation.
func New(api API, confirmer Confirmer, store navigation.Store, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		api:            api,
		confirmer:      confirmer,
		logger:         logger,
		metrics:        opts.Metrics,
		uploadTimeout:  opts.UploadTimeout,
		saveTimeout:    opts.SaveTimeout,
		searchPageSize: opts.SearchPageSize,
	}
	if s.uploadTimeout <= 0 {
		s.uploadTimeout = DefaultUploadTimeout
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = DefaultSaveTimeout
	}
	if s.searchPageSize <= 0 {
		s.searchPageSize = DefaultSearchPageSize
	}

	s.Catalogue = operations.NewCatalogue(api, logger.Named("catalogue"))
	s.Listing = listing.NewEngine(api,
		listing.WithPageSize(opts.PageSize),
		listing.WithFolderPageSize(opts.FolderPageSize),
		listing.WithLogger(logger.Named("listing")),
		listing.WithMetrics(opts.Metrics))
	s.Navigator = navigation.NewNavigator(store, opts.Navigation, logger.Named("navigation"))
	return s
}

// Start loads the operation catalogue and the first page of the start
// path. Both are attempted; their failures are returned together and leave
// the session usable.
func (s *Session) Start(ctx context.Context) error {
	var result *multierror.Error
	if _, err := s.Catalogue.Load(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	s.Listing.Reset(s.query(s.Navigator.Current()))
	if _, err := settle(s.Listing.Load(ctx)); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (s *Session) query(p string) listing.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listing.Query{
		Path:     p,
		Mode:     s.Navigator.Mode(),
		TagIDs:   append([]int64(nil), s.tagIDs...),
		MatchAll: s.matchAll,
	}
}

// settle hides results dropped for a newer query.
func settle(snap listing.Snapshot, err error) (listing.Snapshot, error) {
	if errors.Is(err, listing.ErrStale) {
		return snap, nil
	}
	return snap, err
}

// CurrentPath returns the path being browsed.
func (s *Session) CurrentPath() string {
	return s.Navigator.Current()
}

// NavigateTo makes p current, clears the selection and loads its first
// page. Failing to persist the path is logged, not returned.
func (s *Session) NavigateTo(ctx context.Context, p string) (listing.Snapshot, error) {
	p, err := s.Navigator.Enter(p)
	if err != nil {
		s.logger.Warn("navigation state not persisted", zap.String("path", p), zap.Error(err))
	}
	s.metrics.IncNavigations()

	s.mu.Lock()
	s.selection = nil
	s.search = nil
	s.mu.Unlock()

	s.Listing.Reset(s.query(p))
	return settle(s.Listing.Load(ctx))
}

// NavigateToSegment navigates to the breadcrumb at index i.
func (s *Session) NavigateToSegment(ctx context.Context, i int) (listing.Snapshot, error) {
	return s.NavigateTo(ctx, navigation.SegmentPath(s.Navigator.Segments(), i))
}

// GoBack applies the back decision of the navigator. Only BackNavigate
// touches the listing.
func (s *Session) GoBack(ctx context.Context) (navigation.BackAction, error) {
	action, dest := s.Navigator.Back()
	if action != navigation.BackNavigate {
		return action, nil
	}
	_, err := s.NavigateTo(ctx, dest)
	return action, err
}

// SetMode switches the browsing mode. tagIDs and matchAll only matter for
// TAG_FILTER.
func (s *Session) SetMode(ctx context.Context, mode types.BrowsingMode, tagIDs []int64, matchAll bool) (listing.Snapshot, error) {
	s.Navigator.SetMode(mode)
	s.mu.Lock()
	s.tagIDs = append([]int64(nil), tagIDs...)
	s.matchAll = matchAll
	s.selection = nil
	s.mu.Unlock()

	s.Listing.Reset(s.query(s.Navigator.Current()))
	return settle(s.Listing.Load(ctx))
}

// LoadMore appends the next page of the current listing.
func (s *Session) LoadMore(ctx context.Context) (listing.Snapshot, error) {
	return settle(s.Listing.LoadMore(ctx))
}

// Refresh reloads the first page of the current listing.
func (s *Session) Refresh(ctx context.Context) (listing.Snapshot, error) {
	return settle(s.Listing.Refresh(ctx))
}

func (s *Session) refreshAfter(ctx context.Context, what string) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh failed", zap.String("after", what), zap.Error(err))
	}
}
