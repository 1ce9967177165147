package ingest

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ConvertBatch applies fn to every element of in, preserving order. The
// first failure aborts the batch; partial results are discarded.
func ConvertBatch[In, Out any](in []In, fn func(In) (Out, error)) ([]Out, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]Out, len(in))
	errs := make([]error, len(in))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range in {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			v, err := fn(in[i])
			if err != nil {
				errs[i] = fmt.Errorf("element %d: %w", i, err)
				return errs[i]
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Report the lowest failing index so the error does not depend on scheduling.
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return nil, err
	}
	return out, nil
}
