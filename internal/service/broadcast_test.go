package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubConn struct {
	mu       sync.Mutex
	received []DisplayMessage
	failWith error
}

func (c *stubConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failWith != nil {
		return c.failWith
	}
	c.received = append(c.received, v.(DisplayMessage))

	return nil
}

func (c *stubConn) messages() []DisplayMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]DisplayMessage(nil), c.received...)
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()
	first := &stubConn{}
	second := &stubConn{}
	other := &stubConn{}

	b.Register("lobby_1", first)
	b.Register("lobby_1", second)
	b.Register("lobby_2", other)

	delivered := b.Broadcast("lobby_1", DisplayMessage{Type: MsgGameStart, SessionID: "s1"})

	assert.Equal(t, 2, delivered)
	assert.Len(t, first.messages(), 1)
	assert.Equal(t, "s1", first.messages()[0].SessionID)
	assert.Len(t, second.messages(), 1)
	assert.Empty(t, other.messages())
}

func TestBroadcaster_NoConnections(t *testing.T) {
	b := NewBroadcaster()

	delivered := b.Broadcast("ghost", DisplayMessage{Type: MsgSessionReady})

	assert.Zero(t, delivered)
}

func TestBroadcaster_FailingConnSkipped(t *testing.T) {
	b := NewBroadcaster()
	healthy := &stubConn{}
	broken := &stubConn{failWith: errors.New("write: broken pipe")}

	b.Register("lobby_1", healthy)
	b.Register("lobby_1", broken)

	delivered := b.Broadcast("lobby_1", DisplayMessage{Type: MsgGameComplete})

	assert.Equal(t, 1, delivered)
	assert.Len(t, healthy.messages(), 1)
}

func TestBroadcaster_Unregister(t *testing.T) {
	b := NewBroadcaster()
	conn := &stubConn{}

	b.Register("lobby_1", conn)
	assert.Equal(t, 1, b.ConnectionCount("lobby_1"))

	b.Unregister("lobby_1", conn)
	assert.Zero(t, b.ConnectionCount("lobby_1"))
	assert.Zero(t, b.Broadcast("lobby_1", DisplayMessage{Type: MsgPong}))

	// Unregistering twice is harmless.
	b.Unregister("lobby_1", conn)
}

func TestBroadcaster_ConcurrentAccess(t *testing.T) {
	b := NewBroadcaster()
	conn := &stubConn{}
	b.Register("lobby_1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Broadcast("lobby_1", DisplayMessage{Type: MsgPing})
		}()
		go func() {
			defer wg.Done()
			extra := &stubConn{}
			b.Register("lobby_1", extra)
			b.Unregister("lobby_1", extra)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, b.ConnectionCount("lobby_1"))
}
