package services

import (
	"context"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/pkg/dispatch"
)

// sendOnlyHandler answers SendMessage and panics on every other kind.
type sendOnlyHandler struct {
	command.Handler

	mu      sync.Mutex
	texts   []string
	outcome command.Outcome
}

func (h *sendOnlyHandler) SendMessage(_ context.Context, r *command.SendMessage) command.Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, r.Text)
	return h.outcome
}

type fakeFetcher struct {
	mu      sync.Mutex
	batches [][]*kgo.Record
	closed  bool
	err     error
}

func (f *fakeFetcher) Poll(ctx context.Context) ([]*kgo.Record, error) {
	f.mu.Lock()
	if len(f.batches) > 0 {
		b := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return b, nil
	}
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeFetcher) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeQueue struct {
	mu    sync.Mutex
	units []dispatch.Unit
}

func (q *fakeQueue) Push(u dispatch.Unit) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.units = append(q.units, u)
	return nil
}

func (q *fakeQueue) snapshot() []dispatch.Unit {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]dispatch.Unit(nil), q.units...)
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		r.Partition = 2
		r.Offset = int64(len(p.records) - 1)
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

func record(value string) *kgo.Record {
	return &kgo.Record{Topic: "tg-commands", Value: []byte(value)}
}
