package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// Handler consumes one inbound event.
type Handler interface {
	HandleEvent(ctx context.Context, ev gateway.Event) error
}

// Dispatcher pumps gateway events into per-user queues, each drained by
// its own goroutine. Events for one user are handled strictly in arrival
// order; events for different users run concurrently. Session and cart
// mutations therefore never race within a user.
type Dispatcher struct {
	handler Handler
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	queues map[int64]chan gateway.Event
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given handler
func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		logger:  util.GetLogger(),
		queues:  make(map[int64]chan gateway.Event),
	}
}

// Start consumes events until ctx is cancelled or the channel closes.
func (d *Dispatcher) Start(ctx context.Context, events <-chan gateway.Event) error {
	d.logger.Info("Starting event dispatcher")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.route(ctx, ev)
		}
	}
}

// route holds the lock across the queue send so that Stop can never close
// a queue with a send in flight. Queues are drained by dedicated goroutines
// that never take the lock, so the send always makes progress.
func (d *Dispatcher) route(ctx context.Context, ev gateway.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("Dropping event after dispatcher stop",
			zap.Int64("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)))
		return
	}

	q, ok := d.queues[ev.UserID]
	if !ok {
		q = make(chan gateway.Event, 16)
		d.queues[ev.UserID] = q
		d.wg.Add(1)
		go d.drain(ctx, ev.UserID, q)
	}

	select {
	case q <- ev:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) drain(ctx context.Context, userID int64, q chan gateway.Event) {
	defer d.wg.Done()

	for ev := range q {
		if err := d.handler.HandleEvent(ctx, ev); err != nil {
			d.logger.Error("Event handling failed",
				zap.Int64("user_id", userID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}
}

// Stop shuts intake, closes all user queues and waits for in-flight events
// to finish. An event routed after Stop is dropped rather than handled.
func (d *Dispatcher) Stop() {
	d.logger.Info("Stopping event dispatcher")

	d.mu.Lock()
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.queues = nil
	d.mu.Unlock()

	d.wg.Wait()
}
