package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPushToUser_DeliversToEveryConnection(t *testing.T) {
	t.Parallel()

	m := NewManager()
	go m.Run()

	first := &Client{UserID: "alice", send: make(chan interface{}, 4), manager: m}
	second := &Client{UserID: "alice", send: make(chan interface{}, 4), manager: m}
	other := &Client{UserID: "bob", send: make(chan interface{}, 4), manager: m}
	m.register <- first
	m.register <- second
	m.register <- other

	m.PushToUser("alice", "event")

	assert.Equal(t, "event", <-first.send)
	assert.Equal(t, "event", <-second.send)
	assert.Empty(t, other.send)
	assert.Equal(t, 3, m.ClientCount())
}

func TestPushToUser_UnknownUserIsNoop(t *testing.T) {
	t.Parallel()

	m := NewManager()
	go m.Run()

	m.PushToUser("nobody", "event")
	assert.Equal(t, 0, m.ClientCount())
}

// Pushes must not race the channel close that happens when the same client
// disconnects mid-push.
func TestPushToUser_DuringDisconnect(t *testing.T) {
	t.Parallel()

	m := NewManager()
	go m.Run()

	for i := 0; i < 50; i++ {
		client := &Client{UserID: "alice", send: make(chan interface{}, 1), manager: m}
		m.register <- client

		done := make(chan struct{})
		go func() {
			for j := 0; j < 100; j++ {
				m.PushToUser("alice", j)
			}
			close(done)
		}()
		m.unregister <- client
		<-done
	}

	assert.Eventually(t, func() bool {
		return m.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSlowClientIsEvicted(t *testing.T) {
	t.Parallel()

	m := NewManager()
	go m.Run()

	// Buffer of one and nobody draining: the second push overflows.
	client := &Client{UserID: "alice", send: make(chan interface{}, 1), manager: m}
	m.register <- client

	m.PushToUser("alice", "first")
	m.PushToUser("alice", "second")

	assert.Eventually(t, func() bool {
		return m.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
