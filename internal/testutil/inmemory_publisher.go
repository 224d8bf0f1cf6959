package testutil

import (
	"context"
	"sync"

	"github.com/aiteamhq/billsync/internal/billingevents/publisher"
	"github.com/aiteamhq/billsync/internal/types"
)

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// InMemoryEventPublisher records published billing events
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.BillingEvent
}

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.BillingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.SourceEventID == "" {
		event.SourceEventID = types.GetEventID(ctx)
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns the published events in order
func (p *InMemoryEventPublisher) Events() []*types.BillingEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.BillingEvent(nil), p.events...)
}

// Names returns the names of the published events in order
func (p *InMemoryEventPublisher) Names() []types.BillingEventName {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]types.BillingEventName, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName)
	}
	return names
}

func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
