package bus

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
)

// NatsBus carries events over core NATS. Channel names map to subjects 1:1
// except that ':' becomes '.' (NATS token separator).
type NatsBus struct {
	nc *nats.Conn
}

func NewNatsBus(url string) (*NatsBus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, err
	}
	return &NatsBus{nc: nc}, nil
}

var _ Bus = (*NatsBus)(nil)

func subject(channel string) string {
	return strings.ReplaceAll(channel, ":", ".")
}

func (b *NatsBus) Publish(ctx context.Context, channel, event string, data any) error {
	payload, err := Marshal(event, data)
	if err != nil {
		return err
	}
	return b.nc.Publish(subject(channel), payload)
}

func (b *NatsBus) Subscribe(channel string, h Handler) (func(), error) {
	sub, err := b.nc.Subscribe(subject(channel), func(m *nats.Msg) {
		h(m.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (b *NatsBus) Close() {
	b.nc.Close()
}
