package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/paycycle/internal/kafka"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/pubsub"
)

// Publisher writes event messages to kafka through the shared producer
type Publisher struct {
	producer *kafka.Producer
	logger   *logger.Logger
}

func NewPublisher(producer *kafka.Producer, logger *logger.Logger) pubsub.Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	return p.producer.Publish(topic, msg)
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
