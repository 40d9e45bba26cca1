package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHubBroadcastsPendingCount(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := &Client{Send: make(chan []byte, 8)}
	b := &Client{Send: make(chan []byte, 8)}
	hub.register <- a
	hub.register <- b

	hub.PublishPendingCount(3)

	assert.JSONEq(t, `{"pendingLoans":3}`, string(receive(t, a.Send)))
	assert.JSONEq(t, `{"pendingLoans":3}`, string(receive(t, b.Send)))
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Send: make(chan []byte, 8)}
	hub.register <- client
	hub.unregister <- client

	// The send channel is closed on unregister.
	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHubEvictsSaturatedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No buffer: the first broadcast cannot be delivered and the client
	// must be evicted rather than blocking the loop.
	stuck := &Client{Send: make(chan []byte)}
	healthy := &Client{Send: make(chan []byte, 8)}
	hub.register <- stuck
	hub.register <- healthy

	hub.PublishPendingCount(1)
	require.NotNil(t, receive(t, healthy.Send))

	hub.PublishPendingCount(2)
	assert.JSONEq(t, `{"pendingLoans":2}`, string(receive(t, healthy.Send)))
}
