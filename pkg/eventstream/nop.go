package eventstream

import "context"

// NopPublisher discards events, for deployments without a broker.
type NopPublisher struct{}

var _ Publisher = (*NopPublisher)(nil)

// NewNopPublisher creates a publisher that drops everything.
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish validates and discards the event.
func (*NopPublisher) Publish(_ context.Context, event *TurnCompletedEvent) error {
	if event == nil {
		return ErrNilTurnEvent
	}
	return nil
}

// Close is a no-op.
func (*NopPublisher) Close() error {
	return nil
}
