package feetable

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zalepa/judgefee/fee"
)

// Pending is a fee table that is loaded once in the background. Until the
// load finishes every lookup misses; after a failed load it behaves like an
// empty table.
type Pending struct {
	table atomic.Pointer[Table]
	done  chan struct{}
	err   error
}

// Open starts loading path and returns immediately. An empty path yields a
// table that is ready and empty.
func Open(path string, logger *zap.Logger) *Pending {
	return open(path, Load, logger)
}

func open(path string, load func(string) (*Table, error), logger *zap.Logger) *Pending {
	p := &Pending{done: make(chan struct{})}
	if path == "" {
		p.table.Store(Empty)
		close(p.done)
		return p
	}

	go func() {
		defer close(p.done)
		t, err := load(path)
		if err != nil {
			p.err = err
			logger.Warn("fee table unavailable, region lookup disabled",
				zap.String("path", path), zap.Error(err))
			p.table.Store(Empty)
			return
		}
		for _, d := range t.Duplicates() {
			logger.Warn("duplicate region in fee table", zap.String("path", path), zap.Stringer("duplicate", d))
		}
		logger.Info("fee table loaded", zap.String("path", path), zap.Int("rows", t.Len()))
		p.table.Store(t)
	}()
	return p
}

// Ready returns a channel that is closed once loading has finished.
func (p *Pending) Ready() <-chan struct{} { return p.done }

// Wait blocks until loading has finished or ctx is done, and returns the
// table loaded so far (possibly empty).
func (p *Pending) Wait(ctx context.Context) *Table {
	select {
	case <-p.done:
	case <-ctx.Done():
	}
	return p.Table()
}

// Err returns the load error once loading has finished.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Table returns the loaded table, or an empty one while loading.
func (p *Pending) Table() *Table {
	if t := p.table.Load(); t != nil {
		return t
	}
	return Empty
}

// Lookup implements fee.RateLookup.
func (p *Pending) Lookup(region string) (fee.RegionRates, bool) {
	return p.Table().Lookup(region)
}
