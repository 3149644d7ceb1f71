package mykafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(nil)
	require.Error(t, err)
	assert.Nil(t, p)

	p, err = NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestProducer_PublishEvent_RejectsUnencodable(t *testing.T) {
	t.Parallel()

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishEvent(context.Background(), TopicCarts, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}

func TestEvent_JSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Event{Type: "cart_cleared", UserID: "u1", OccurredAt: time.Unix(0, 0).UTC()})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "cart_cleared", m["type"])
	assert.Equal(t, "u1", m["userID"])
	assert.NotContains(t, m, "productID")
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "k", Event{}))
	assert.NoError(t, p.Close())
}
