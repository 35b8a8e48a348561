package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/metrics"
)

// Dispatcher sends notifications in the background. Callers never wait for
// delivery and never see its errors; failures are logged and counted.
type Dispatcher struct {
	notifier Notifier
	logger   logging.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, logger logging.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, logger: logger.With("module", "notify"), timeout: timeout}
}

// Dispatch starts delivery of link to address and returns immediately.
func (d *Dispatcher) Dispatch(to, link string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.SendPasswordReset(ctx, to, link); err != nil {
			metrics.Notifications.WithLabelValues("failure").Inc()
			d.logger.Error(ctx, "password reset notification failed", "error", err)
			return
		}
		metrics.Notifications.WithLabelValues("success").Inc()
		d.logger.Info(ctx, "password reset notification sent")
	}()
}

// Close waits for in-flight deliveries or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
