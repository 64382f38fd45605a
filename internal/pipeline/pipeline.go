// Package pipeline sequences one URL through classification, fetch,
// normalization, summarization, scoring, and dedup-aware persistence.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/stellarlinkco/linkclaw/internal/capture"
	"github.com/stellarlinkco/linkclaw/internal/fetch"
	"github.com/stellarlinkco/linkclaw/internal/store"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Dedup reports whether the URL was already archived when the run reached
// the persistence stage. Runs that fail earlier leave it nil.
type Dedup struct {
	Exists bool `json:"exists"`
}

// Result is the record a run hands back to any caller. The CLI, the
// notifier, and the watcher consume nothing else.
type Result struct {
	URL        string             `json:"url"`
	Status     string             `json:"status"`
	Kind       capture.SourceKind `json:"sourceKind,omitempty"`
	Title      string             `json:"title,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Labels     []string           `json:"labels,omitempty"`
	Importance float64            `json:"importance,omitempty"`
	Dedup      *Dedup             `json:"dedup,omitempty"`
	StoredID   string             `json:"storedId,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type Pipeline struct {
	router *fetch.Router
	store  *store.Store
	rules  []capture.LabelRule
}

// New wires a pipeline over a router and a store. A nil rule table falls
// back to the built-in defaults.
func New(router *fetch.Router, st *store.Store, rules []capture.LabelRule) *Pipeline {
	if rules == nil {
		rules = capture.DefaultLabelRules()
	}
	return &Pipeline{router: router, store: st, rules: rules}
}

// Run captures one URL. A URL already archived is not overwritten; the
// result reports the existing id instead.
func (p *Pipeline) Run(ctx context.Context, url string) Result {
	return p.run(ctx, url, false)
}

// Refresh re-captures one URL, overwriting any existing row so engagement
// stats stay current.
func (p *Pipeline) Refresh(ctx context.Context, url string) Result {
	return p.run(ctx, url, true)
}

func (p *Pipeline) run(ctx context.Context, url string, force bool) Result {
	res := Result{URL: url, Status: StatusError}

	kind, err := capture.Classify(url)
	if err != nil {
		return p.fail(res, err)
	}
	res.Kind = kind

	adapter, err := p.router.Resolve(kind)
	if err != nil {
		return p.fail(res, err)
	}

	raw, err := adapter.Fetch(ctx, url)
	if err != nil {
		return p.fail(res, fmt.Errorf("fetch: %w", err))
	}

	c, err := capture.Normalize(raw, url)
	if err != nil {
		return p.fail(res, err)
	}

	summary := capture.Summarize(c)
	importance := capture.Score(c)
	labels := capture.Label(c, summary, p.rules)

	res.Title = c.Title
	res.Summary = summary
	res.Labels = labels
	res.Importance = importance

	exists, err := p.store.Exists(url)
	if err != nil {
		return p.fail(res, fmt.Errorf("dedup check: %w", err))
	}
	res.Dedup = &Dedup{Exists: exists}

	if exists && !force {
		res.Status = StatusOK
		res.StoredID = store.CaptureID(url)
		if prev, err := p.store.Get(url); err == nil && prev != nil {
			log.Printf("[pipeline] %s already captured at %s, skipping save", url, prev.CapturedAt)
		} else {
			log.Printf("[pipeline] %s already captured, skipping save", url)
		}
		return res
	}

	id, err := p.store.Save(c, summary, labels, importance)
	if err != nil {
		return p.fail(res, fmt.Errorf("save: %w", err))
	}
	res.Status = StatusOK
	res.StoredID = id
	log.Printf("[pipeline] archived %s as %s (importance %.2f)", url, id, importance)
	return res
}

func (p *Pipeline) fail(res Result, err error) Result {
	res.Status = StatusError
	res.Error = err.Error()
	log.Printf("[pipeline] %s: %v", res.URL, err)
	return res
}
