package feed

import (
	"context"
	"time"

	"github.com/ganot/sitecycle/internal/domain/failure"
)

// Snapshot is one full result set delivered to a watcher. Err is set, and
// Items empty, when the reload failed.
type Snapshot[T any] struct {
	Items []T
	Err   error
	At    time.Time
}

// Loader fetches the full result set of a watched query.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Watch delivers the result of load immediately and again after every change
// signalled on topic. The returned channel is closed once ctx is done.
func Watch[T any](ctx context.Context, hub *Hub, topic string, load Loader[T]) <-chan Snapshot[T] {
	sub := hub.Subscribe(topic)
	out := make(chan Snapshot[T], 1)

	var tick <-chan time.Time
	if hub.pollInterval > 0 {
		ticker := time.NewTicker(hub.pollInterval)
		tick = ticker.C
		go func() {
			<-ctx.Done()
			ticker.Stop()
		}()
	}

	go func() {
		defer close(out)
		defer sub.Close()

		emit := func() bool {
			items, err := load(ctx)
			snap := Snapshot[T]{Items: items, At: time.Now()}
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				snap = Snapshot[T]{Err: failure.Read("watch "+topic, err), At: time.Now()}
				hub.logger.Warn("feed reload failed", "topic", topic, "error", err)
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Changes:
				if !ok {
					return
				}
			case <-tick:
			}
			if !emit() {
				return
			}
		}
	}()

	return out
}
