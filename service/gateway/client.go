package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameSize  = 16 * 1024
	sendQueueSize = 256
)

// Client is one user session connected to this gateway node. A user may hold
// several connections (devices); each is tracked separately. The Send queue
// is consumed by a single writer goroutine.
type Client struct {
	ConnID string
	UserID string
	WS     *websocket.Conn
	Send   chan []byte

	// done signals the writer and the fanout workers. Send is never closed:
	// a fanout worker may still hold a reference to this client when the
	// connection dies, and a send on a closed channel would kill the worker.
	done chan struct{}

	mu        sync.Mutex
	roomID    string // chat currently displayed, "" when none
	roomUnsub func()
	userUnsub func()
	closeOnce sync.Once
}

func NewClient(connID, userID string, ws *websocket.Conn) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// setRoom swaps the active room subscription; unsubscribing the old one.
func (c *Client) setRoom(chatID string, unsub func()) {
	c.mu.Lock()
	old := c.roomUnsub
	c.roomID = chatID
	c.roomUnsub = unsub
	c.mu.Unlock()
	if old != nil {
		old()
	}
}

// Room returns the chat this client currently displays.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		roomUnsub, userUnsub := c.roomUnsub, c.userUnsub
		c.roomUnsub, c.userUnsub = nil, nil
		c.mu.Unlock()
		if roomUnsub != nil {
			roomUnsub()
		}
		if userUnsub != nil {
			userUnsub()
		}
		close(c.done)
	})
}

// writePump drains Send onto the socket and keeps the connection alive with
// pings. One writer per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.WS.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.WS.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
