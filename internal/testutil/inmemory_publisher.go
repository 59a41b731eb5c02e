package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/paycycle/internal/domain/events"
	"github.com/flexprice/paycycle/internal/publisher"
	"github.com/flexprice/paycycle/internal/types"
)

// InMemoryPublisherService records published events for assertions
type InMemoryPublisherService struct {
	mu     sync.RWMutex
	events []*events.Event
}

var _ publisher.EventPublisher = (*InMemoryPublisherService)(nil)

// NewInMemoryEventPublisher creates a new instance of InMemoryPublisherService
func NewInMemoryEventPublisher() *InMemoryPublisherService {
	return &InMemoryPublisherService{
		events: make([]*events.Event, 0),
	}
}

// Publish implements publisher.EventPublisher
func (p *InMemoryPublisherService) Publish(ctx context.Context, event *events.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// GetEvents returns all published events
func (p *InMemoryPublisherService) GetEvents() []*events.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	events := make([]*events.Event, len(p.events))
	copy(events, p.events)
	return events
}

// EventsNamed returns the published events with the given name
func (p *InMemoryPublisherService) EventsNamed(name types.EventName) []*events.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var matched []*events.Event
	for _, evt := range p.events {
		if evt.EventName == name {
			matched = append(matched, evt)
		}
	}
	return matched
}

// Clear removes all published events
func (p *InMemoryPublisherService) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*events.Event, 0)
}
