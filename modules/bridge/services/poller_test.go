package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/kafka"
)

func TestPoller_QueuesValidCommandsOnly(t *testing.T) {
	fetcher := &fakeFetcher{batches: [][]*kgo.Record{{
		record(`{"request_type":"send_message","chat_id":42,"text":"one"}`),
		record(`{"request_type":"unknown"}`),
		record(`{"request_type":"send_message","chat_id":"abc","text":"bad"}`),
		record(`garbage`),
	}, {
		record(`{"request_type":"delete_message","chat_id":42,"message_id":[1,2]}`),
	}}}
	queue := &fakeQueue{}
	p := NewPoller(NewDecoder(&sendOnlyHandler{}), queue, PollerOptions{Fetcher: fetcher})
	require.Equal(t, PollerStarted, p.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return len(queue.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PollerRunning, p.State())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, PollerStopped, p.State())
	assert.True(t, fetcher.isClosed())

	units := queue.snapshot()
	assert.Equal(t, "send_message", units[0].Name)
	assert.Equal(t, "delete_message", units[1].Name)
}

func TestPoller_LazyFactory(t *testing.T) {
	fetcher := &fakeFetcher{err: kafka.ErrClosed}
	calls := 0
	p := NewPoller(NewDecoder(&sendOnlyHandler{}), &fakeQueue{}, PollerOptions{
		Factory: func(context.Context) (kafka.Fetcher, error) {
			calls++
			return fetcher, nil
		},
	})

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 1, calls)
	assert.True(t, fetcher.isClosed())
}

func TestPoller_ConsumerUnavailable(t *testing.T) {
	p := NewPoller(NewDecoder(&sendOnlyHandler{}), &fakeQueue{}, PollerOptions{
		Factory: func(context.Context) (kafka.Fetcher, error) {
			return nil, errors.New("no brokers")
		},
	})
	err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrConsumerUnavailable)
	assert.Equal(t, PollerStopped, p.State())

	p = NewPoller(NewDecoder(&sendOnlyHandler{}), &fakeQueue{}, PollerOptions{})
	require.ErrorIs(t, p.Run(context.Background()), ErrConsumerUnavailable)
}

func TestPoller_PollErrorStopsRun(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("broker gone")}
	p := NewPoller(NewDecoder(&sendOnlyHandler{}), &fakeQueue{}, PollerOptions{Fetcher: fetcher})

	require.Error(t, p.Run(context.Background()))
	assert.True(t, fetcher.isClosed())
}
