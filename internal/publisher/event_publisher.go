package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/domain/events"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/kafka"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/pubsub"
	kafkaPubSub "github.com/flexprice/paycycle/internal/pubsub/kafka"
	"github.com/flexprice/paycycle/internal/pubsub/memory"
	"github.com/flexprice/paycycle/internal/types"
)

const defaultTopic = "paycycle-events"

// EventPublisher handles lifecycle event publishing
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	topic  string
	logger *logger.Logger
	config *config.EventConfig
}

// NewEventPublisher creates a publisher writing to the configured destination
func NewEventPublisher(cfg *config.Configuration, logger *logger.Logger) (EventPublisher, error) {
	var target pubsub.Publisher

	switch cfg.Event.PublishDestination {
	case types.PublishToKafka:
		producer, err := kafka.NewProducer(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		target = kafkaPubSub.NewPublisher(producer, logger)
	case types.PublishToMemory, "":
		target = memory.NewPubSub(logger)
	default:
		return nil, fmt.Errorf("unknown publish destination: %s", cfg.Event.PublishDestination)
	}

	return NewEventPublisherWithTarget(cfg, logger, target), nil
}

// NewEventPublisherWithTarget wraps an existing pubsub publisher
func NewEventPublisherWithTarget(cfg *config.Configuration, logger *logger.Logger, target pubsub.Publisher) EventPublisher {
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = defaultTopic
	}
	return &eventPublisher{
		pubsub: target,
		topic:  topic,
		logger: logger,
		config: &cfg.Event,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *events.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal event").
			Mark(ierr.ErrValidation)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", event.EventName.String())
	msg.Metadata.Set("entity_id", event.EntityID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	p.logger.Debugw("publishing event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"entity_id", event.EntityID,
		"destination", p.config.PublishDestination,
	)

	if err := p.pubsub.Publish(ctx, p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			WithReportableDetails(map[string]any{
				"event_id":   event.ID,
				"event_name": event.EventName,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}
