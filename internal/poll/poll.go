// Package poll provides the poll-until-terminal loop shared by the session
// watcher and the provider job watcher.
package poll

import (
	"context"
	"time"
)

// Until calls fetch, tests the result, and sleeps the interval between
// attempts until terminal reports true. Polling is sequential: the next
// request is not issued until the previous one resolved. A fetch error
// aborts the loop; ctx cancellation returns ctx.Err() alongside the last
// observed value.
func Until[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), terminal func(T) bool) (T, error) {
	var last T
	timer := time.NewTimer(0) // first attempt fires immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-timer.C:
		}

		v, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		last = v
		if terminal(v) {
			return v, nil
		}
		timer.Reset(interval)
	}
}
