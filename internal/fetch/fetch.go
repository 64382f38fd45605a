// Package fetch retrieves URL content through source-specific adapters.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// ErrEmptyResult marks a fetch that technically succeeded but produced no
// usable content. Treated as a failure, never as a zero-content success.
var ErrEmptyResult = errors.New("empty fetch result")

// userAgent is sent on outbound HTTP requests; several sites serve reduced
// markup to unknown clients.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Adapter fetches one URL into a raw result for normalization. Adapters
// bound their own wall-clock cost and never retry; the caller treats any
// error as terminal for the run.
type Adapter interface {
	Kind() capture.SourceKind
	Fetch(ctx context.Context, url string) (*capture.RawResult, error)
}

// Router resolves the adapter responsible for a source kind.
type Router struct {
	adapters map[capture.SourceKind]Adapter
}

func NewRouter(adapters ...Adapter) *Router {
	r := &Router{adapters: make(map[capture.SourceKind]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Router) Register(a Adapter) {
	r.adapters[a.Kind()] = a
}

func (r *Router) Resolve(kind capture.SourceKind) (Adapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source kind %q", kind)
	}
	return a, nil
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
