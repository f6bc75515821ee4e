package kafka

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iota-uz/tgbridge/pkg/configuration"
)

var ErrClosed = errors.New("kafka: client closed")

// Fetcher pulls the next batch of command records.
type Fetcher interface {
	Poll(ctx context.Context) ([]*kgo.Record, error)
	Close()
}

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Consumer struct {
	client *kgo.Client
	logger *logrus.Entry
}

var _ Fetcher = (*Consumer)(nil)

// NewConsumer joins the commands consumer group. Offsets start at the earliest record
// on first run and are committed automatically.
func NewConsumer(ctx context.Context, opts configuration.KafkaOptions, logger *logrus.Entry) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(opts.Brokers...),
		kgo.DialTimeout(opts.DialTimeout),
		kgo.ConsumerGroup(opts.GroupID),
		kgo.ConsumeTopics(opts.CommandsTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AutoCommitInterval(opts.AutoCommitInterval),
		kgo.WithLogger(newLogger(logger)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka consumer")
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping kafka")
	}
	return &Consumer{client: client, logger: logger}, nil
}

// NewProducer returns an idempotent producer that waits for all in-sync replicas.
func NewProducer(ctx context.Context, opts configuration.KafkaOptions, logger *logrus.Entry) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(opts.Brokers...),
		kgo.DialTimeout(opts.DialTimeout),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(opts.BatchMaxBytes),
		kgo.ProducerLinger(0),
		kgo.WithLogger(newLogger(logger)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping kafka")
	}
	return client, nil
}

// Poll blocks until records arrive or ctx is done. Per-partition fetch errors are
// logged and skipped.
func (c *Consumer) Poll(ctx context.Context) ([]*kgo.Record, error) {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fetches.EachError(func(topic string, partition int32, err error) {
		c.logger.WithError(err).
			WithField("topic", topic).
			WithField("partition", partition).
			Error("kafka fetch error")
	})
	return fetches.Records(), nil
}

func (c *Consumer) Close() {
	c.client.Close()
}
