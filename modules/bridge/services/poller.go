package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/kafka"
	"github.com/iota-uz/tgbridge/pkg/dispatch"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

var ErrConsumerUnavailable = errors.New("command consumer unavailable")

type PollerState int32

const (
	PollerStarted PollerState = iota
	PollerRunning
	PollerStopped
)

func (s PollerState) String() string {
	switch s {
	case PollerStarted:
		return "started"
	case PollerRunning:
		return "running"
	case PollerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Pusher accepts decoded units without waiting for them to run.
type Pusher interface {
	Push(u dispatch.Unit) error
}

type FetcherFactory func(ctx context.Context) (kafka.Fetcher, error)

type PollerOptions struct {
	// Fetcher is used as is when set; otherwise Factory creates one on Run.
	Fetcher kafka.Fetcher
	Factory FetcherFactory
	Logger  *logrus.Entry
}

// Poller reads command records, decodes them and hands them to the queue.
type Poller struct {
	fetcher kafka.Fetcher
	factory FetcherFactory
	decoder *Decoder
	queue   Pusher
	logger  *logrus.Entry
	state   atomic.Int32
	m       *metrics
}

func NewPoller(decoder *Decoder, queue Pusher, opts PollerOptions) *Poller {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Poller{
		fetcher: opts.Fetcher,
		factory: opts.Factory,
		decoder: decoder,
		queue:   queue,
		logger:  opts.Logger,
		m:       getMetrics(),
	}
}

func (p *Poller) State() PollerState {
	return PollerState(p.state.Load())
}

// Run polls until ctx is cancelled or the fetcher is closed. The fetcher is always
// closed on return.
func (p *Poller) Run(ctx context.Context) error {
	defer p.state.Store(int32(PollerStopped))

	fetcher := p.fetcher
	if fetcher == nil {
		if p.factory == nil {
			return ErrConsumerUnavailable
		}
		f, err := p.factory(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConsumerUnavailable, err)
		}
		fetcher = f
	}
	defer fetcher.Close()

	p.state.Store(int32(PollerRunning))
	p.logger.Info("command poller started")
	for {
		records, err := fetcher.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			p.logger.Info("command poller stopped")
			return nil
		case errors.Is(err, kafka.ErrClosed):
			p.logger.Warn("command consumer closed, poller stopping")
			return nil
		case err != nil:
			return errors.Wrap(err, "poll commands")
		}
		for _, rec := range records {
			p.handle(rec)
		}
	}
}

func (p *Poller) handle(rec *kgo.Record) {
	p.m.records.Inc()
	logger := p.logger.WithFields(logrus.Fields{
		"partition": rec.Partition,
		"offset":    rec.Offset,
	})

	unit, err := p.decoder.Decode(rec.Value)
	if err != nil {
		var verr *command.ValidationError
		if errors.As(err, &verr) {
			p.m.invalid.WithLabelValues(string(verr.Kind)).Inc()
			logger.WithError(err).Warn("invalid command dropped")
			return
		}
		logger.WithError(err).Error("failed to decode command")
		return
	}
	if unit == nil {
		p.m.ignored.Inc()
		logger.Debug("record without a known request_type ignored")
		return
	}

	if err := p.queue.Push(*unit); err != nil {
		logger.WithError(err).WithField("kind", unit.Name).Error("failed to queue command")
		return
	}
	p.m.decoded.WithLabelValues(unit.Name).Inc()
	logger.WithFields(logrus.Fields{
		"kind":       unit.Name,
		"request_id": unit.RequestID,
	}).Debug("command queued")
}
