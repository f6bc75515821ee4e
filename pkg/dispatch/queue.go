package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/iota-uz/tgbridge/pkg/dispatch")

// Queue is an unbounded FIFO of units drained by a single worker. Units run strictly
// one at a time in push order; a failing unit is retried in place before the worker
// advances, so ordering holds even under repeated failures.
type Queue struct {
	opts Options
	m    *metrics

	mu     sync.Mutex
	items  []Unit
	notify chan struct{}

	running sync.Mutex
}

func New(opts Options) (*Queue, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Queue{
		opts:   opts,
		m:      getMetrics(),
		notify: make(chan struct{}, 1),
	}, nil
}

// Push appends u to the queue. It never blocks on execution.
func (q *Queue) Push(u Unit) error {
	if u.Run == nil {
		return ErrInvalidUnit
	}
	q.mu.Lock()
	q.items = append(q.items, u)
	depth := len(q.items)
	q.mu.Unlock()

	q.m.enqueueTotal.WithLabelValues(u.Name).Inc()
	q.m.depth.Set(float64(depth))

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Run drains the queue until ctx is done. Only one Run may be active at a time.
func (q *Queue) Run(ctx context.Context) error {
	if ctx == nil {
		return invalidConfig("ctx is required")
	}
	if !q.running.TryLock() {
		return invalidConfig("queue worker is already running")
	}
	defer q.running.Unlock()

	q.opts.Logger.Info("dispatch: queue worker has been started")
	for {
		if q.opts.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(q.opts.Interval):
			}
		}

		u, err := q.next(ctx)
		if err != nil {
			return err
		}
		q.execute(ctx, u)
	}
}

func (q *Queue) next(ctx context.Context) (Unit, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			u := q.items[0]
			q.items[0] = Unit{}
			q.items = q.items[1:]
			depth := len(q.items)
			q.mu.Unlock()
			q.m.depth.Set(float64(depth))
			return u, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Unit{}, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *Queue) execute(ctx context.Context, u Unit) {
	var lastErr error
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			if wait := backoff(attempt-1, q.opts.MaxBackoff); wait > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
		}

		start := time.Now()
		lastErr = q.attempt(ctx, u, attempt)
		latency := time.Since(start)
		if lastErr == nil {
			q.record(u.Name, "success", latency)
			return
		}

		q.record(u.Name, "failure", latency)
		q.opts.Logger.
			WithFields(logFields(u, attempt)).
			WithField("error", errorText(lastErr, q.opts.LastErrorMaxLen)).
			Error("dispatch: unit attempt failed")

		if errors.Is(lastErr, context.Canceled) && ctx.Err() != nil {
			return
		}
	}

	q.m.droppedTotal.WithLabelValues(u.Name).Inc()
	q.opts.Logger.
		WithFields(logFields(u, q.opts.MaxAttempts)).
		WithField("error", errorText(lastErr, q.opts.LastErrorMaxLen)).
		Error("dispatch: unit dropped after exhausting attempts")
	if u.OnDrop != nil {
		q.dropped(ctx, u, lastErr)
	}
	if q.opts.OnDrop != nil {
		q.opts.OnDrop(u, q.opts.MaxAttempts, lastErr)
	}
}

func (q *Queue) dropped(ctx context.Context, u Unit, lastErr error) {
	defer func() {
		if r := recover(); r != nil {
			q.opts.Logger.WithFields(logFields(u, q.opts.MaxAttempts)).
				WithField("panic", fmt.Sprint(r)).
				Error("dispatch: panic recovered in drop hook")
		}
	}()
	u.OnDrop(ctx, lastErr)
}

func (q *Queue) attempt(ctx context.Context, u Unit, n int) (err error) {
	attrs := []attribute.KeyValue{
		attribute.String("dispatch.unit", u.Name),
		attribute.Int("dispatch.attempt", n),
	}
	if u.RequestID != "" {
		attrs = append(attrs, attribute.String("dispatch.request_id", u.RequestID))
	}
	ctx, span := tracer.Start(ctx, "dispatch.attempt", trace.WithAttributes(attrs...))
	defer func() {
		if r := recover(); r != nil {
			q.opts.Logger.WithFields(logFields(u, n)).
				WithField("stack", string(debug.Stack())).
				Error("dispatch: panic recovered in unit")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return u.Run(ctx)
}

func (q *Queue) record(unit, result string, latency time.Duration) {
	q.m.attemptTotal.WithLabelValues(unit, result).Inc()
	q.m.attemptLatency.WithLabelValues(unit, result).Observe(latency.Seconds())
}
