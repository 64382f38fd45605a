package pipeline

import (
	"context"
	"sync"
)

// RunAll captures many URLs with at most concurrency runs in flight.
// Results come back in input order.
func (p *Pipeline) RunAll(ctx context.Context, urls []string, concurrency int) []Result {
	return p.runAll(ctx, urls, concurrency, false)
}

// RefreshAll is RunAll in forced-overwrite mode.
func (p *Pipeline) RefreshAll(ctx context.Context, urls []string, concurrency int) []Result {
	return p.runAll(ctx, urls, concurrency, true)
}

func (p *Pipeline) runAll(ctx context.Context, urls []string, concurrency int, force bool) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.run(ctx, url, force)
		}(i, url)
	}
	wg.Wait()
	return results
}
