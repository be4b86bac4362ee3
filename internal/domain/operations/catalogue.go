package operations

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// Fetcher retrieves the operation catalogue from the backend.
type Fetcher interface {
	FetchOperationCatalogue(ctx context.Context) ([]types.OperationDescriptor, error)
}

// Catalogue caches the backend operation descriptors for a session.
type Catalogue struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu       sync.RWMutex
	ops      []types.OperationDescriptor
	index    map[string]int
	loadedAt time.Time
}

// NewCatalogue creates an empty catalogue backed by f
func NewCatalogue(f Fetcher, logger *zap.Logger) *Catalogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalogue{
		fetcher: f,
		logger:  logger,
		index:   make(map[string]int),
	}
}

// Load fetches the catalogue and replaces the cached set. On failure the
// previous set is kept and a *types.CatalogueUnavailable is returned.
func (c *Catalogue) Load(ctx context.Context) ([]types.OperationDescriptor, error) {
	fetched, err := c.fetcher.FetchOperationCatalogue(ctx)
	if err != nil {
		c.logger.Warn("operation catalogue fetch failed", zap.Error(err))
		return nil, &types.CatalogueUnavailable{Err: err}
	}

	ops := make([]types.OperationDescriptor, 0, len(fetched))
	index := make(map[string]int, len(fetched))
	for _, d := range fetched {
		if d.Type == "" {
			continue
		}
		// first declaration of a type wins
		if _, dup := index[d.Type]; dup {
			c.logger.Debug("duplicate operation type dropped", zap.String("type", d.Type))
			continue
		}
		index[d.Type] = len(ops)
		ops = append(ops, d)
	}

	c.mu.Lock()
	c.ops = ops
	c.index = index
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("operation catalogue loaded", zap.Int("count", len(ops)))
	return c.Operations(), nil
}

// Operations returns a copy of the cached descriptors in catalogue order.
func (c *Catalogue) Operations() []types.OperationDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.OperationDescriptor, len(c.ops))
	copy(out, c.ops)
	return out
}

// Find looks a descriptor up by type.
func (c *Catalogue) Find(opType string) (types.OperationDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[opType]
	if !ok {
		return types.OperationDescriptor{}, false
	}
	return c.ops[i], true
}

// Loaded reports whether a load has ever succeeded.
func (c *Catalogue) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loadedAt.IsZero()
}

// LoadedAt returns the time of the last successful load.
func (c *Catalogue) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
