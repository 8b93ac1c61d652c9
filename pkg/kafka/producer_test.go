package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublish_RejectsUnencodablePayload(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, zap.NewNop())
	defer p.Close()

	err := p.Publish(context.Background(), "booking-events", "key", make(chan int))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal payload")
}

func TestCloseNil(t *testing.T) {
	var p *Producer
	var c *Consumer

	assert.NoError(t, p.Close())
	assert.NoError(t, c.Close())
}
