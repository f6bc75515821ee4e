package telegram

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
	"github.com/gotd/td/tgerr"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

const (
	limiterKey = "telegram:session"
	minPause   = 50 * time.Millisecond
)

// ResponseFunc delivers a response produced by a command.
type ResponseFunc func(ctx context.Context, resp command.Response) error

type ExecutorOptions struct {
	// FloodWaitMax caps how long a FLOOD_WAIT is honoured before the command is retried.
	FloodWaitMax time.Duration
	// Limiter paces every command. Nil disables pacing.
	Limiter *limiter.Limiter
	Respond ResponseFunc
	Clock   clockwork.Clock
	HTTP    *resty.Client
	Logger  *logrus.Entry
}

// Executor runs decoded commands against the Telegram session. It must only be
// called from the dispatch worker.
type Executor struct {
	rpc      RPC
	uploader Uploader
	peers    *PeerResolver
	store    sidestore.Store

	floodWaitMax time.Duration
	limiter      *limiter.Limiter
	respond      ResponseFunc
	clock        clockwork.Clock
	http         *resty.Client
	logger       *logrus.Entry
	m            *metrics
}

var (
	_ command.Handler   = (*Executor)(nil)
	_ command.Abandoner = (*Executor)(nil)
)

func NewExecutor(rpc RPC, up Uploader, peers *PeerResolver, store sidestore.Store, opts ExecutorOptions) *Executor {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.HTTP == nil {
		opts.HTTP = newHTTPClient()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Respond == nil {
		opts.Respond = func(context.Context, command.Response) error { return nil }
	}
	return &Executor{
		rpc:          rpc,
		uploader:     up,
		peers:        peers,
		store:        store,
		floodWaitMax: opts.FloodWaitMax,
		limiter:      opts.Limiter,
		respond:      opts.Respond,
		clock:        opts.Clock,
		http:         opts.HTTP,
		logger:       opts.Logger,
		m:            getMetrics(),
	}
}

// run executes fn and maps its error onto an outcome. FLOOD_WAIT is waited out and
// retried; every other failure is logged and suppressed.
func (e *Executor) run(ctx context.Context, r command.Request, fn func(ctx context.Context) error) command.Outcome {
	logger := e.logger.WithFields(logrus.Fields{
		"kind":    r.Kind(),
		"chat_id": r.Target(),
	})
	if id := r.ID(); id != "" {
		logger = logger.WithField("request_id", id)
	}

	if err := e.pace(ctx); err != nil {
		return e.finish(r, command.Retry(err), 0)
	}

	start := e.clock.Now()
	err := fn(ctx)
	latency := e.clock.Since(start)
	if err == nil {
		logger.Debug("command executed")
		return e.finish(r, command.Completed(), latency)
	}

	if d, ok := tgerr.AsFloodWait(err); ok {
		wait := d
		if e.floodWaitMax > 0 && wait > e.floodWaitMax {
			wait = e.floodWaitMax
		}
		logger.WithField("wait", d.String()).Warn("flood wait, command will be retried")
		select {
		case <-ctx.Done():
		case <-e.clock.After(wait):
		}
		return e.finish(r, command.Retry(err), latency)
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return e.finish(r, command.Retry(err), latency)
	}

	logger.WithError(err).Error(describe(r.Kind(), err))
	return e.finish(r, command.Suppressed(err), latency)
}

func (e *Executor) finish(r command.Request, out command.Outcome, latency time.Duration) command.Outcome {
	kind := r.Kind().String()
	e.m.outcomes.WithLabelValues(kind, out.Kind.String()).Inc()
	if latency > 0 {
		e.m.latency.WithLabelValues(kind).Observe(latency.Seconds())
	}
	return out
}

// pace blocks until the rate limiter lets another call through. Limiter failures do
// not block commands.
func (e *Executor) pace(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	for {
		lctx, err := e.limiter.Get(ctx, limiterKey)
		if err != nil {
			e.logger.WithError(err).Warn("rate limiter unavailable, not pacing")
			return nil
		}
		if !lctx.Reached {
			return nil
		}
		wait := time.Unix(lctx.Reset, 0).Sub(e.clock.Now())
		if wait < minPause {
			wait = minPause
		}
		e.m.paced.Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(wait):
		}
	}
}

// describe turns known provider errors into a readable log message.
func describe(kind command.Kind, err error) string {
	switch {
	case tgerr.Is(err, "MESSAGE_NOT_MODIFIED"):
		return "message was not edited: the new content is identical to the current one"
	case tgerr.Is(err, "MESSAGE_AUTHOR_REQUIRED"):
		return "message was not edited: this account is not its author"
	case tgerr.Is(err, "MESSAGE_ID_INVALID", "MESSAGE_IDS_EMPTY"):
		return "message does not exist or is not accessible"
	case tgerr.Is(err, "CHAT_WRITE_FORBIDDEN", "CHAT_ADMIN_REQUIRED"):
		return "not allowed to act in this chat"
	case tgerr.Is(err, "PEER_ID_INVALID", "CHANNEL_INVALID", "CHANNEL_PRIVATE"):
		return "chat is unknown to this account"
	case errors.Is(err, ErrPeerNotFound):
		return "chat is unknown to this account"
	}
	if kind == command.KindEditTopic {
		if rpcErr, ok := tgerr.As(err); ok && rpcErr.Code == 400 {
			return "topic was not edited"
		}
	}
	return "command failed"
}

func isFloodWait(err error) bool {
	_, ok := tgerr.AsFloodWait(err)
	return ok
}
