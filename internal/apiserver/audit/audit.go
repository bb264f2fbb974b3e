package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event is a single auth-relevant occurrence. Emission is best-effort: the
// caller never waits on, or fails because of, the sink.
type Event struct {
	Action   string // register, login, refresh, logout, logout_all
	UserID   string
	TenantID string
	Email    string
	IP       string
	Success  bool
	Reason   string
	At       time.Time
}

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// ZapSink writes audit events as structured log lines.
type ZapSink struct {
	Logger *zap.Logger
}

func (s ZapSink) Emit(_ context.Context, e Event) {
	s.Logger.Info("audit",
		zap.String("action", e.Action),
		zap.String("user_id", e.UserID),
		zap.String("tenant_id", e.TenantID),
		zap.String("email", e.Email),
		zap.String("ip", e.IP),
		zap.Bool("success", e.Success),
		zap.String("reason", e.Reason),
		zap.Time("at", e.At),
	)
}

// Dispatcher forwards events to a sink from a background goroutine. When the
// buffer is full the event is dropped and counted, never blocking callers.
// A nil *Dispatcher is a valid no-op.
type Dispatcher struct {
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher with the given buffer size.
func NewDispatcher(sink Sink, bufferSize int) *Dispatcher {
	if sink == nil {
		return nil
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}

	d := &Dispatcher{
		sink: sink,
		ch:   make(chan Event, bufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			// drain what's buffered, then stop
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit queues an event without blocking. Dropped events are counted.
func (d *Dispatcher) Emit(event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	select {
	case d.ch <- event:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Close flushes buffered events and stops the dispatcher.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}
