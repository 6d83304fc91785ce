package bus

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"linguachat/logger"
	"linguachat/tools/safe"
)

// RedisBus carries events over Redis pub/sub. One PubSub connection serves
// every channel this node cares about; channels are added and removed as
// gateways subscribe and unsubscribe.
type RedisBus struct {
	client *redis.Client
	ps     *redis.PubSub

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]Handler // channel -> handler set

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisBus(client *redis.Client) *RedisBus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client: client,
		ps:     client.Subscribe(ctx),
		subs:   make(map[string]map[int]Handler),
		ctx:    ctx,
		cancel: cancel,
	}
	safe.Go(b.pump)
	return b
}

var _ Bus = (*RedisBus)(nil)

func (b *RedisBus) pump() {
	for msg := range b.ps.Channel() {
		b.mu.Lock()
		hs := make([]Handler, 0, len(b.subs[msg.Channel]))
		for _, h := range b.subs[msg.Channel] {
			hs = append(hs, h)
		}
		b.mu.Unlock()
		for _, h := range hs {
			h([]byte(msg.Payload))
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, channel, event string, data any) error {
	payload, err := Marshal(event, data)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBus) Subscribe(channel string, h Handler) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	first := b.subs[channel] == nil
	if first {
		b.subs[channel] = make(map[int]Handler)
	}
	b.subs[channel][id] = h
	b.mu.Unlock()

	if first {
		if err := b.ps.Subscribe(b.ctx, channel); err != nil {
			b.drop(channel, id)
			return nil, err
		}
	}
	return func() { b.drop(channel, id) }, nil
}

func (b *RedisBus) drop(channel string, id int) {
	b.mu.Lock()
	delete(b.subs[channel], id)
	last := len(b.subs[channel]) == 0
	if last {
		delete(b.subs, channel)
	}
	b.mu.Unlock()

	if last {
		if err := b.ps.Unsubscribe(b.ctx, channel); err != nil {
			logger.Warn("redis unsubscribe failed", zap.String("channel", channel), zap.Error(err))
		}
	}
}

func (b *RedisBus) Close() {
	b.cancel()
	_ = b.ps.Close()
}
