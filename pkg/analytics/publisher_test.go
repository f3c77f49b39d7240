package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

func TestRedisEventPublisherRelaysToHook(t *testing.T) {
	_, client := newTestRedis(t)
	publisher := NewRedisEventPublisher(client, "")
	hook := dashboard.NewBroadcastHook()
	events, cancelSub := hook.Subscribe("")
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, publisher.Relay(ctx, hook, nil))

	require.NoError(t, publisher.PublishPageEvent(ctx, dashboard.PageEvent{
		Kind:     dashboard.EventAlertAction,
		Page:     dashboard.PageMarketing,
		ViewerID: "u1",
	}))

	select {
	case event := <-events:
		assert.Equal(t, dashboard.EventAlertAction, event.Kind)
		assert.Equal(t, dashboard.PageMarketing, event.Page)
		assert.Equal(t, "u1", event.ViewerID)
	case <-time.After(time.Second):
		t.Fatal("expected relayed event")
	}
}

func TestNewRedisClientPings(t *testing.T) {
	mr, _ := newTestRedis(t)
	client, err := NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var publisher *RedisEventPublisher
	assert.NoError(t, publisher.PublishPageEvent(context.Background(), dashboard.PageEvent{}))
}
