package notifier

import (
	"context"
	"encoding/json"

	"sjsage522/promowatch/services/publisher"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// StreamEndpoint mirrors alerts onto a message stream
type StreamEndpoint struct {
	pub publisher.Publisher
}

// NewStreamEndpoint wraps a publisher as an alert endpoint
func NewStreamEndpoint(pub publisher.Publisher) *StreamEndpoint {
	return &StreamEndpoint{pub: pub}
}

// Name identifies the endpoint in logs
func (s *StreamEndpoint) Name() string {
	return "stream"
}

// Deliver publishes the alert as JSON under the "alert" field
func (s *StreamEndpoint) Deliver(ctx context.Context, alert Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return apperrors.NewNotify(s.Name(), "failed to encode alert", err)
	}
	if err := s.pub.Publish(ctx, "alert", data); err != nil {
		return apperrors.NewNotify(s.Name(), "publish failed", err)
	}
	return nil
}
