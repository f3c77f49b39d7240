package dashboard

import (
	"context"
	"errors"
)

// EventPublisher forwards page events to an external bus (Redis pub/sub or
// similar).
type EventPublisher interface {
	PublishPageEvent(ctx context.Context, event PageEvent) error
}

// PublisherHook forwards page events to an EventPublisher.
type PublisherHook struct {
	Publisher EventPublisher
}

// PageUpdated publishes events to the configured publisher.
func (h *PublisherHook) PageUpdated(ctx context.Context, event PageEvent) error {
	if h == nil || h.Publisher == nil {
		return nil
	}
	return h.Publisher.PublishPageEvent(ctx, event)
}

// MultiHook calls every hook in order and joins their errors.
type MultiHook []RefreshHook

// PageUpdated implements RefreshHook.
func (m MultiHook) PageUpdated(ctx context.Context, event PageEvent) error {
	var err error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		err = errors.Join(err, hook.PageUpdated(ctx, event))
	}
	return err
}
