// Package schedule refreshes captured URLs on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	rcron "github.com/robfig/cron/v3"
	"github.com/stellarlinkco/linkclaw/internal/pipeline"
	"github.com/stellarlinkco/linkclaw/internal/store"
)

// Watcher periodically re-captures every stored URL so engagement stats
// stay current. Refresh overwrites, so repeated sweeps are idempotent.
type Watcher struct {
	schedule    string
	concurrency int
	pipe        *pipeline.Pipeline
	store       *store.Store

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
	stopCh chan struct{}
}

func NewWatcher(pipe *pipeline.Pipeline, st *store.Store, schedule string, concurrency int) *Watcher {
	return &Watcher{
		schedule:    schedule,
		concurrency: concurrency,
		pipe:        pipe,
		store:       st,
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	stopCh := make(chan struct{})

	c := rcron.New()
	if _, err := c.AddFunc(w.schedule, func() {
		w.sweep(runCtx)
	}); err != nil {
		cancel()
		return fmt.Errorf("register watch schedule %q: %w", w.schedule, err)
	}

	w.mu.Lock()
	w.cron = c
	w.cancel = cancel
	w.stopCh = stopCh
	w.mu.Unlock()

	c.Start()
	log.Printf("[watch] started with schedule %q", w.schedule)

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-stopCh:
			return
		}
	}()

	return nil
}

// sweep refreshes every stored URL once.
func (w *Watcher) sweep(ctx context.Context) {
	runID := uuid.New().String()[:8]

	urls, err := w.store.URLs()
	if err != nil {
		log.Printf("[watch] sweep %s: list urls: %v", runID, err)
		return
	}
	if len(urls) == 0 {
		log.Printf("[watch] sweep %s: nothing to refresh", runID)
		return
	}

	log.Printf("[watch] sweep %s: refreshing %d url(s)", runID, len(urls))
	start := time.Now()
	results := w.pipe.RefreshAll(ctx, urls, w.concurrency)

	ok := 0
	for _, res := range results {
		if res.Status == pipeline.StatusOK {
			ok++
			continue
		}
		log.Printf("[watch] sweep %s: %s failed: %s", runID, res.URL, res.Error)
	}
	log.Printf("[watch] sweep %s: %d/%d refreshed in %s", runID, ok, len(results), time.Since(start).Round(time.Millisecond))
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	cancel := w.cancel
	stopCh := w.stopCh
	w.cron = nil
	w.cancel = nil
	w.stopCh = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopCh != nil {
		close(stopCh)
	}

	if c != nil {
		stopCtx := c.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(5 * time.Second):
			log.Printf("[watch] stop timeout waiting for running sweep")
		}
	}
	log.Printf("[watch] stopped")
}
