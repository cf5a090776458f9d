// Package compliance implements the geolocation rule set: validation,
// deterministic repair, and export optimization of feature collections.
package compliance

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the feature count above which per-feature
// work is spread across goroutines.
const DefaultParallelThreshold = 500

// forEach runs fn for every index in [0, n). Below threshold it runs
// serially; above it fans out over a bounded errgroup. Callers write results
// into index-addressed slots so output order never depends on scheduling.
func forEach(n, threshold int, fn func(i int)) {
	if threshold <= 0 || n <= threshold {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
