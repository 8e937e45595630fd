package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func waitForClientCount(t *testing.T, h *Hub, userID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.clientCount(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count for %s never reached %d (now %d)", userID, want, h.clientCount(userID))
}

func TestSendToUserDelivers(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userId := uuid.New()
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- client
	waitForClientCount(t, hub, userId, 1)

	hub.SendToUser(userId, "reply", map[string]interface{}{"content": "hi"})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), `"type":"reply"`)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestSendToUserFullBufferEvictsWithoutCrashing(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userId := uuid.New()
	stuck := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	stuck.Send <- []byte("backlog")
	hub.register <- stuck
	waitForClientCount(t, hub, userId, 1)

	// Both sends overflow the buffer; the second one lands after the client
	// was already evicted and closed once.
	hub.SendToUser(userId, "typing", nil)
	hub.SendToUser(userId, "typing", nil)

	waitForClientCount(t, hub, userId, 0)

	<-stuck.Send // drain the backlog entry
	_, open := <-stuck.Send
	assert.False(t, open, "Send must be closed exactly once, by the unregister branch")
}

func TestSendToUserKeepsHealthySibling(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userId := uuid.New()
	stuck := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	stuck.Send <- []byte("backlog")
	healthy := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- stuck
	hub.register <- healthy
	waitForClientCount(t, hub, userId, 2)

	hub.SendToUser(userId, "reply", map[string]interface{}{"content": "hi"})

	waitForClientCount(t, hub, userId, 1)

	select {
	case data := <-healthy.Send:
		assert.Contains(t, string(data), `"content":"hi"`)
	case <-time.After(time.Second):
		t.Fatal("healthy connection lost the frame")
	}
}
