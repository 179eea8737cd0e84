package expression

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/cache"
)

const (
	DefaultTTL = time.Hour
	tableKey   = "expression:table"
)

// Cache loads the expression table on first use and keeps it in an injected
// store until the store expires it or Reload replaces it.
type Cache struct {
	src   Source
	store cache.Store[*Table]
	memo  *cache.Memo[*Table]
}

// NewCache wraps src. A nil store gets a single-entry store expiring after
// DefaultTTL.
func NewCache(src Source, store cache.Store[*Table]) *Cache {
	if store == nil {
		store = cache.NewTTL[*Table](1, DefaultTTL)
	}
	return &Cache{src: src, store: store, memo: cache.NewMemo(store)}
}

func (c *Cache) Source() Source { return c.src }

// Table returns the cached table, loading it when absent or expired. The
// load is shared by concurrent callers, so it does not inherit cancellation.
func (c *Cache) Table(ctx context.Context) (*Table, error) {
	shared := context.WithoutCancel(ctx)
	t, _, err := c.memo.Do(tableKey, func() (*Table, error) {
		return c.src.Load(shared)
	})
	if err != nil {
		return nil, fmt.Errorf("load expression from %s: %w", c.src.Name(), err)
	}
	return t, nil
}

// Reload reads the source again. The previous table stays cached when the
// load fails.
func (c *Cache) Reload(ctx context.Context) (*Table, error) {
	t, err := c.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload expression from %s: %w", c.src.Name(), err)
	}
	c.store.Add(tableKey, t)
	return t, nil
}

// Summary returns the Brain/Heart/Liver averages for a gene.
func (c *Cache) Summary(ctx context.Context, symbol string, logScale bool) ([]Entry, error) {
	t, err := c.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Summary(symbol, logScale), nil
}

// Watch reloads the table whenever path is written, created or renamed,
// until ctx is done. The parent directory is watched so editors that
// replace the file are seen too.
func (c *Cache) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create expression watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Info("Watching expression table", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if _, err := c.Reload(ctx); err != nil {
				logger.Warn("Expression reload failed", zap.String("event", evt.String()), zap.Error(err))
				continue
			}
			logger.Info("Expression table reloaded", zap.String("event", evt.Op.String()))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Expression watcher error", zap.Error(err))
		}
	}
}
