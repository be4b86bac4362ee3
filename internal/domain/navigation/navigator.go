package navigation

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// BackAction tells the front end how to handle a back request.
type BackAction int

const (
	// BackSignal hands the back request to the embedding view.
	BackSignal BackAction = iota
	// BackNavigate moves to the parent directory.
	BackNavigate
	// BackPlatform leaves the browser through the host's own back.
	BackPlatform
)

func (a BackAction) String() string {
	switch a {
	case BackSignal:
		return "signal"
	case BackNavigate:
		return "navigate"
	default:
		return "platform"
	}
}

// Options configures a Navigator.
type Options struct {
	// InitialPath wins over every other source of the start path.
	InitialPath string
	// QueryPath is the path requested by the caller's entry point.
	QueryPath      string
	Mode           types.BrowsingMode
	FromNavigation bool
	CustomBack     bool
	HistoryLimit   int
}

// Navigator owns the current path.
type Navigator struct {
	store   Store
	history *History
	logger  *zap.Logger

	mu         sync.RWMutex
	current    string
	mode       types.BrowsingMode
	fromNav    bool
	customBack bool
}

// NewNavigator resolves the start path from opts, then the persisted last
// path, then "/".
func NewNavigator(store Store, opts Options, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := opts.Mode
	if mode == "" {
		mode = types.ModeNormal
	}
	n := &Navigator{
		store:      store,
		history:    NewHistory(store, opts.HistoryLimit, logger),
		logger:     logger,
		mode:       mode,
		fromNav:    opts.FromNavigation,
		customBack: opts.CustomBack,
	}
	n.current = n.initialPath(opts)
	return n
}

func (n *Navigator) initialPath(opts Options) string {
	if opts.InitialPath != "" {
		return CleanPath(opts.InitialPath)
	}
	if opts.QueryPath != "" {
		return CleanPath(opts.QueryPath)
	}
	saved, ok, err := n.store.GetString(KeyCurrentPath)
	if err != nil {
		n.logger.Warn("ignoring unreadable saved path", zap.Error(err))
	}
	if ok && saved != "" {
		return CleanPath(saved)
	}
	return "/"
}

// Current returns the current path.
func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

func (n *Navigator) Mode() types.BrowsingMode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mode
}

func (n *Navigator) SetMode(mode types.BrowsingMode) {
	n.mu.Lock()
	n.mode = mode
	n.mu.Unlock()
}

// Segments returns the breadcrumb elements of the current path.
func (n *Navigator) Segments() []string {
	return PathSegments(n.Current())
}

// Enter makes p current. The path is persisted as the last location only in
// NORMAL mode; the history is updated in every mode. Persistence failures
// are returned after the in-memory state has changed.
func (n *Navigator) Enter(p string) (string, error) {
	p = CleanPath(p)

	n.mu.Lock()
	n.current = p
	persist := n.mode == types.ModeNormal
	n.mu.Unlock()

	n.logger.Info("navigated", zap.String("path", p))

	var err error
	if persist {
		if serr := n.store.SetString(KeyCurrentPath, p); serr != nil {
			err = fmt.Errorf("failed to persist current path: %w", serr)
		}
	}
	if herr := n.history.Push(p); herr != nil && err == nil {
		err = herr
	}
	return p, err
}

// Back decides how a back request is handled and, for BackNavigate, the
// destination.
func (n *Navigator) Back() (BackAction, string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.customBack {
		return BackSignal, ""
	}
	if n.fromNav && n.current != "/" {
		return BackNavigate, ParentPath(n.current)
	}
	return BackPlatform, ""
}

// History returns the visited paths, most recent first.
func (n *Navigator) History() []string {
	return n.history.Entries()
}
