package services

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/kafka"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

var ErrProducerNotInitialized = errors.New("response producer is not initialized")

type PublishResult struct {
	RequestID string
	Topic     string
	Partition int32
	Offset    int64
}

// ResponsePublisher writes command responses to the bus, keyed by request id.
type ResponsePublisher struct {
	producer kafka.Producer
	logger   *logrus.Entry
	m        *metrics
}

func NewResponsePublisher(producer kafka.Producer, logger *logrus.Entry) *ResponsePublisher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ResponsePublisher{producer: producer, logger: logger, m: getMetrics()}
}

// Publish blocks until the broker acknowledges the record.
func (p *ResponsePublisher) Publish(ctx context.Context, resp command.Response, topic string) (PublishResult, error) {
	if p == nil || p.producer == nil {
		return PublishResult{}, ErrProducerNotInitialized
	}
	value, err := json.Marshal(resp)
	if err != nil {
		p.m.published.WithLabelValues("error").Inc()
		return PublishResult{}, errors.Wrap(err, "encode response")
	}

	rec, err := p.producer.ProduceSync(ctx, &kgo.Record{
		Topic: topic,
		Key:   []byte(resp.RequestID),
		Value: value,
	}).First()
	if err != nil {
		p.m.published.WithLabelValues("error").Inc()
		return PublishResult{}, errors.Wrapf(err, "produce response to %s", topic)
	}
	p.m.published.WithLabelValues("ok").Inc()

	res := PublishResult{
		RequestID: resp.RequestID,
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
	}
	p.logger.WithFields(logrus.Fields{
		"request_id": res.RequestID,
		"status":     resp.Status,
		"topic":      res.Topic,
		"partition":  res.Partition,
		"offset":     res.Offset,
	}).Info("response published")
	return res, nil
}

// Responder adapts Publish for the executor.
func (p *ResponsePublisher) Responder(topic string) telegram.ResponseFunc {
	return func(ctx context.Context, resp command.Response) error {
		_, err := p.Publish(ctx, resp, topic)
		return err
	}
}
