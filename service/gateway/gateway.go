package gateway

import (
	"context"

	"go.uber.org/zap"

	"linguachat/logger"
	"linguachat/service/bus"
	"linguachat/service/storage"
)

// Gateway bridges bus channels onto this node's live websocket connections.
// A client is subscribed to its own personal channel for the whole session
// and to at most one room channel, the chat it currently displays. Room
// subscription is a presence optimization only: a client that missed room
// events re-derives state on the next chat fetch.
type Gateway struct {
	id       string
	bus      bus.Bus
	conns    *ConnManager
	fanout   *Fanout
	presence *storage.Presence
}

func New(id string, b bus.Bus, presence *storage.Presence) *Gateway {
	return &Gateway{
		id:       id,
		bus:      b,
		conns:    NewConnManager(),
		fanout:   NewFanout(4, 1024),
		presence: presence,
	}
}

// Register wires a freshly upgraded connection: conn index, personal-channel
// subscription, presence. Only the user's first connection on this node
// touches the presence key; heartbeats keep it fresh afterwards.
func (g *Gateway) Register(ctx context.Context, c *Client) error {
	first := g.conns.Add(c)

	unsub, err := g.bus.Subscribe(bus.UserChannel(c.UserID), func(payload []byte) {
		g.fanout.Broadcast([]*Client{c}, payload)
	})
	if err != nil {
		g.conns.Remove(c)
		return err
	}
	c.userUnsub = unsub

	if first {
		if err := g.presence.Online(ctx, c.UserID, g.id); err != nil {
			logger.Warn("presence online failed", zap.String("user", c.UserID), zap.Error(err))
		}
	}
	return nil
}

// Unregister tears the connection down and clears presence when it was the
// user's last one on this node.
func (g *Gateway) Unregister(ctx context.Context, c *Client) {
	last := g.conns.Remove(c)
	c.teardown()
	if last {
		if err := g.presence.Offline(ctx, c.UserID); err != nil {
			logger.Warn("presence offline failed", zap.String("user", c.UserID), zap.Error(err))
		}
	}
}

// OpenChat switches the client's room subscription to chatID: events for the
// displayed chat start flowing, the previous room's stop.
func (g *Gateway) OpenChat(c *Client, chatID string) error {
	unsub, err := g.bus.Subscribe(bus.ChatChannel(chatID), func(payload []byte) {
		g.fanout.Broadcast([]*Client{c}, payload)
	})
	if err != nil {
		return err
	}
	c.setRoom(chatID, unsub)
	return nil
}

// CloseChat drops the room subscription when the client navigates away.
func (g *Gateway) CloseChat(c *Client) {
	c.setRoom("", nil)
}

// Heartbeat renews the user's presence TTL.
func (g *Gateway) Heartbeat(ctx context.Context, c *Client) {
	if err := g.presence.Online(ctx, c.UserID, g.id); err != nil {
		logger.Warn("presence renew failed", zap.String("user", c.UserID), zap.Error(err))
	}
}
