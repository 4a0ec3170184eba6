package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background runs fire-and-forget tasks on goroutines that are tracked
// so a graceful shutdown can wait for them.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log logrus.FieldLogger) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules fn on a tracked goroutine. The context passed to fn is
// cancelled when the Background shuts down, so long-running tasks must
// watch it.
func (b *Background) Add(fn func(ctx context.Context)) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				b.log.WithFields(logrus.Fields{
					"panic": rec,
					"trace": string(debug.Stack()),
				}).Error("background task panicked")
			}
		}()

		fn(b.ctx)
	}()
}

// Shutdown cancels all running tasks and waits for them to return, or
// gives up when ctx expires.
func (b *Background) Shutdown(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background tasks did not finish: %w", ctx.Err())
	}
}
