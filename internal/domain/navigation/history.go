package navigation

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Durable keys.
const (
	KeyCurrentPath = "currentFilePath"
	KeyPathHistory = "path_history"
)

// DefaultHistoryLimit bounds the persisted history.
const DefaultHistoryLimit = 10

// Store is the durable key/value port.
type Store interface {
	GetString(key string) (string, bool, error)
	SetString(key, value string) error
	GetList(key string) ([]string, error)
	SetList(key string, values []string) error
}

// History is a most-recent-first list of distinct paths.
type History struct {
	store  Store
	limit  int
	logger *zap.Logger
	mu     sync.Mutex
}

// NewHistory creates a history persisted in store
func NewHistory(store Store, limit int, logger *zap.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{store: store, limit: limit, logger: logger}
}

// Entries returns the persisted history. An unreadable value is treated as
// empty.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.read()
}

func (h *History) read() []string {
	list, err := h.store.GetList(KeyPathHistory)
	if err != nil {
		h.logger.Warn("discarding unreadable path history", zap.Error(err))
		return nil
	}
	return list
}

// Push moves p to the head of the history. Nothing is written when p is
// already the head.
func (h *History) Push(p string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.read()
	if len(current) > 0 && current[0] == p {
		return nil
	}

	next := make([]string, 0, h.limit)
	next = append(next, p)
	for _, existing := range current {
		if len(next) == h.limit {
			break
		}
		if existing != p {
			next = append(next, existing)
		}
	}
	if err := h.store.SetList(KeyPathHistory, next); err != nil {
		return fmt.Errorf("failed to persist path history: %w", err)
	}
	return nil
}
