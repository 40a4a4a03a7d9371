package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const queueSize = 100

// Dispatcher entrega em segundo plano, no mesmo molde da auditoria.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan Event
	done     chan struct{}
	once     sync.Once
}

func NewDispatcher(n Notifier, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		logger:   logger,
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.logger.Warn("notification failed",
				zap.String("event", string(ev.Kind)),
				zap.Uint("booking_id", ev.BookingID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Send(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("notify queue full, dropping event",
			zap.String("event", string(ev.Kind)),
			zap.Uint("booking_id", ev.BookingID),
		)
	}
}

func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	<-d.done
}
