package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// Start sweeps every registered instance once per interval until ctx is done.
// It blocks and returns ctx.Err().
func (r *Registry) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "cache sweeper started", logger.Duration(r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "cache sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// StartBackground runs Start in a goroutine owned by the Registry.
// Calling it while the sweeper already runs is a no-op.
func (r *Registry) StartBackground(ctx context.Context) {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	r.cancel = cancel
	r.group = g
}

// Stop halts a sweeper started with StartBackground and waits for it to exit.
func (r *Registry) Stop() error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	if r.cancel == nil {
		return nil
	}
	r.cancel()
	err := r.group.Wait()
	r.cancel = nil
	r.group = nil
	return err
}

// Running reports whether a background sweeper is active.
func (r *Registry) Running() bool {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	return r.cancel != nil
}

// Sweep removes expired entries from every instance and returns the total removed.
// A failing instance is logged and skipped.
func (r *Registry) Sweep() int {
	removed := 0
	for _, inst := range r.snapshot() {
		n, err := r.sweepInstance(inst)
		if err != nil {
			r.logger.Error("cache sweep failed",
				logger.Cache(inst.Name()), logger.Error(err))
			continue
		}
		removed += n
	}
	if removed > 0 {
		r.logger.Debug("cache sweep finished", logger.Count(removed))
	}
	return removed
}

func (r *Registry) sweepInstance(inst Instance) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during sweep: %v", rec)
		}
	}()
	return inst.DeleteExpired(), nil
}
