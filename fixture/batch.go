package fixture

import (
	"context"
	"fixture-factory/typeexpr"
	"reflect"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ManufactureAll builds n independent values of t concurrently. It stops
// at the first error or when ctx is done; values are returned in request
// order. With memoization enabled the results share memoized instances, and
// which goroutine's instance is kept is unspecified.
func (f *Factory) ManufactureAll(ctx context.Context, t reflect.Type, n int, args ...typeexpr.Expr) ([]any, error) {
	out := make([]any, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := f.Manufacture(t, args...)
			if err != nil {
				return err
			}

			out[i] = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
