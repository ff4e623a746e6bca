package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/promowatch/services/publisher"

	apperrors "sjsage522/promowatch/pkg/errors"
)

type mockPublisher struct {
	key     string
	message []byte
	err     error
}

var _ publisher.Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(_ context.Context, key string, message []byte) error {
	m.key = key
	m.message = message
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func TestStreamEndpointDeliver(t *testing.T) {
	pub := &mockPublisher{}
	ep := NewStreamEndpoint(pub)

	alert := Alert{Title: "MEC New Promo: Save $5", Body: "Code: A & B", Copy: "Code: A & B"}
	require.NoError(t, ep.Deliver(context.Background(), alert))

	assert.Equal(t, "alert", pub.key)
	var got Alert
	require.NoError(t, json.Unmarshal(pub.message, &got))
	assert.Equal(t, alert, got)
}

func TestStreamEndpointPublishError(t *testing.T) {
	ep := NewStreamEndpoint(&mockPublisher{err: errors.New("connection refused")})

	err := ep.Deliver(context.Background(), Alert{Title: "t"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotify))
}
