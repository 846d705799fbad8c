package broker

import (
	"context"
	"fmt"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
)

// EventPublisher handles publishing shop events. A publisher built over a
// nil producer is a no-op, which is how event streaming stays optional.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event interface{}) error {
	if ep == nil || ep.producer == nil {
		return nil
	}
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderSubmitted publishes OrderSubmitted event
func (ep *EventPublisher) PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	return ep.publish(ctx, fmt.Sprintf("user-%d", event.UserID), event)
}

// PublishOrderConfirmed publishes OrderConfirmed event
func (ep *EventPublisher) PublishOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error {
	return ep.publish(ctx, fmt.Sprintf("message-%d", event.MessageID), event)
}

// PublishProductAdded publishes ProductAdded event
func (ep *EventPublisher) PublishProductAdded(ctx context.Context, event *models.ProductAddedEvent) error {
	return ep.publish(ctx, fmt.Sprintf("category-%s", event.CategoryKey), event)
}
