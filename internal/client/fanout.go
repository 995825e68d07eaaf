package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sportsync/ingestion/internal/metrics"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

// DefaultFanOutLimit is the concurrency ceiling used when Limit is unset.
const DefaultFanOutLimit = 100

// FanOut fetches one URL per item with at most Limit requests in flight.
// Decode turns each item's response into zero or more results.
type FanOut[T any, R any] struct {
	Name    string
	Fetcher Fetcher
	Limit   int
	URL     func(item T) string
	Label   func(item T) string
	Decode  func(ctx context.Context, item T, resp *Response) ([]R, error)
}

// Failure records one item whose fetch or decode failed.
type Failure[T any] struct {
	Item  T
	Label string
	URL   string
	Err   error
}

// FanOutResult aggregates the outcome of a run. Succeeded+len(Failures)
// always equals the number of items submitted. Order is unspecified.
type FanOutResult[T any, R any] struct {
	Successes []R
	Failures  []Failure[T]
	Succeeded int
}

// Run executes the fan-out. Per-item failures never fail the run. When ctx
// is cancelled no new fetches start, unstarted items are reported as
// failures and ctx.Err() is returned with the partial result.
func (f *FanOut[T, R]) Run(ctx context.Context, items []T) (FanOutResult[T, R], error) {
	var result FanOutResult[T, R]
	if len(items) == 0 {
		return result, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}

	pool, err := ants.NewPool(limit)
	if err != nil {
		return result, fmt.Errorf("create fan-out pool: %w", err)
	}
	defer pool.Release()

	logger := log.Ctx(ctx)
	start := time.Now()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, item := range items {
		if ctx.Err() != nil {
			mu.Lock()
			for _, rest := range items[i:] {
				f.recordFailure(&result, rest, f.urlFor(rest), ctx.Err())
			}
			mu.Unlock()
			break
		}

		item := item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			f.runOne(ctx, item, &mu, &result)
		}); err != nil {
			wg.Done()
			mu.Lock()
			f.recordFailure(&result, item, f.urlFor(item), fmt.Errorf("submit to fan-out pool: %w", err))
			mu.Unlock()
		}
	}

	wg.Wait()

	logger.Info().
		Str("fanout", f.Name).
		Int("items", len(items)).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failures)).
		Int("results", len(result.Successes)).
		Dur("duration", time.Since(start)).
		Msg("Fan-out finished")

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (f *FanOut[T, R]) runOne(ctx context.Context, item T, mu *sync.Mutex, result *FanOutResult[T, R]) {
	u := f.urlFor(item)

	var (
		out []R
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in fan-out item: %v", r)
			}
		}()

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return
		}

		resp, fetchErr := f.fetch(ctx, u)
		if fetchErr != nil {
			err = fetchErr
			return
		}
		if f.Decode == nil {
			return
		}
		out, err = f.Decode(ctx, item, resp)
	}()

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		f.recordFailure(result, item, u, err)
		log.Ctx(ctx).Warn().
			Err(err).
			Str("fanout", f.Name).
			Str("item", f.labelFor(item)).
			Str("url", RedactURL(u)).
			Msg("Fan-out item failed")
		return
	}
	result.Successes = append(result.Successes, out...)
	result.Succeeded++
	metrics.RecordFanOutItem(f.Name, "success")
}

func (f *FanOut[T, R]) fetch(ctx context.Context, u string) (*Response, error) {
	inflight := metrics.FanOutInFlight.WithLabelValues(f.Name)
	inflight.Inc()
	defer inflight.Dec()
	return f.Fetcher.Fetch(ctx, u)
}

// recordFailure must be called with the result mutex held.
func (f *FanOut[T, R]) recordFailure(result *FanOutResult[T, R], item T, u string, err error) {
	result.Failures = append(result.Failures, Failure[T]{
		Item:  item,
		Label: f.labelFor(item),
		URL:   RedactURL(u),
		Err:   err,
	})
	metrics.RecordFanOutItem(f.Name, "failure")
}

func (f *FanOut[T, R]) urlFor(item T) string {
	if f.URL == nil {
		return ""
	}
	return f.URL(item)
}

func (f *FanOut[T, R]) labelFor(item T) string {
	if f.Label == nil {
		return fmt.Sprint(item)
	}
	return f.Label(item)
}
