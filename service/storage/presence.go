package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Presence keeps "who is online where" in Redis. Key holds the gateway id,
// TTL bounds how stale an entry can get if a node dies without cleanup.
type Presence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresence(rdb *redis.Client, ttl time.Duration) *Presence {
	return &Presence{rdb: rdb, ttl: ttl}
}

// presence key: chat:presence:<user>
func presenceKey(user string) string { return "chat:presence:" + user }

// Online sets the user online and renews the TTL; called on connect and on
// every heartbeat.
func (p *Presence) Online(ctx context.Context, user, gatewayID string) error {
	return p.rdb.Set(ctx, presenceKey(user), gatewayID, p.ttl).Err()
}

// Offline actively deletes the key when the user's last connection closes.
func (p *Presence) Offline(ctx context.Context, user string) error {
	return p.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup reports whether the user is online and on which gateway.
func (p *Presence) Lookup(ctx context.Context, user string) (gatewayID string, online bool, err error) {
	val, err := p.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
