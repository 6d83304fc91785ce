package bus

import (
	"context"
	"encoding/json"
)

// Channel naming. One personal channel per user id, one room channel per
// chat id. Channel names are part of the wire contract with clients.
func UserChannel(userID string) string { return "user:" + userID }
func ChatChannel(chatID string) string { return "chat:" + chatID }

// Envelope is the on-wire shape of every published event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives the raw envelope bytes for one event on one channel.
// Delivery is at-least-once and ordered only within a single publisher on a
// single channel; consumers treat events as delta hints and re-fetch when in
// doubt.
type Handler func(payload []byte)

// Bus is the pub/sub bridge between engine mutations and live gateways.
// Backends: Redis pub/sub (default) and NATS, selected by config.
type Bus interface {
	Publish(ctx context.Context, channel, event string, data any) error
	// Subscribe registers h on channel and returns an unsubscribe func.
	Subscribe(channel string, h Handler) (func(), error)
	Close()
}

// Marshal builds the envelope bytes Publish implementations send.
func Marshal(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
