package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KEYS[1] counter, ARGV[1] requested, ARGV[2] total seats.
// Returns {1|0, seats left}.
const reserveScript = `
local committed = tonumber(redis.call('GET', KEYS[1]) or '0')
local count = tonumber(ARGV[1])
local total = tonumber(ARGV[2])
if committed + count > total then
	local left = total - committed
	if left < 0 then left = 0 end
	return {0, left}
end
committed = redis.call('INCRBY', KEYS[1], count)
return {1, total - committed}
`

// KEYS[1] counter, ARGV[1] released. Floors at zero.
const releaseScript = `
local committed = tonumber(redis.call('GET', KEYS[1]) or '0')
local next = committed - tonumber(ARGV[1])
if next < 0 then next = 0 end
redis.call('SET', KEYS[1], next)
return next
`

// KEYS[1] counter, ARGV[1] committed seats found in storage. Only raises the
// counter so reservations made by other instances are kept.
const seedScript = `
local committed = tonumber(redis.call('GET', KEYS[1]) or '0')
local seeded = tonumber(ARGV[1])
if seeded > committed then
	redis.call('SET', KEYS[1], seeded)
	return seeded
end
return committed
`

// Redis keeps counters under seat_inventory:<train>:<date>. Lua scripts run
// atomically on the server, so every mutation is linearizable per key.
type Redis struct {
	client redis.Cmdable
	log    *zap.Logger
}

func NewRedis(client redis.Cmdable, log *zap.Logger) *Redis {
	return &Redis{
		client: client,
		log:    log.With(zap.String("ledger", "redis")),
	}
}

func redisKey(key Key) string {
	return fmt.Sprintf("seat_inventory:%s:%s", key.TrainID, key.JourneyDate)
}

func (r *Redis) Available(ctx context.Context, key Key, totalSeats int) (int, error) {
	committed, err := r.client.Get(ctx, redisKey(key)).Int()
	if errors.Is(err, redis.Nil) {
		return max(totalSeats, 0), nil
	}
	if err != nil {
		r.log.Error("Failed to read seat inventory", zap.Error(err), zap.String("key", key.String()))
		return 0, fmt.Errorf("read seat inventory %s: %w", key, err)
	}
	return remaining(totalSeats, committed), nil
}

func (r *Redis) TryReserve(ctx context.Context, key Key, totalSeats, count int) (Reservation, error) {
	if count <= 0 {
		return Reservation{}, ErrInvalidCount
	}

	result, err := r.client.Eval(ctx, reserveScript, []string{redisKey(key)}, count, totalSeats).Int64Slice()
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
		)
		return Reservation{}, fmt.Errorf("reserve %d seats on %s: %w", count, key, err)
	}
	if len(result) != 2 {
		return Reservation{}, fmt.Errorf("reserve %d seats on %s: unexpected script result %v", count, key, result)
	}

	return Reservation{OK: result[0] == 1, Available: max(int(result[1]), 0)}, nil
}

func (r *Redis) Release(ctx context.Context, key Key, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}

	if err := r.client.Eval(ctx, releaseScript, []string{redisKey(key)}, count).Err(); err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
		)
		return fmt.Errorf("release %d seats on %s: %w", count, key, err)
	}
	return nil
}

func (r *Redis) Seed(ctx context.Context, key Key, committed int) error {
	if committed < 0 {
		return ErrInvalidCount
	}

	if err := r.client.Eval(ctx, seedScript, []string{redisKey(key)}, committed).Err(); err != nil {
		r.log.Error("Failed to seed seat inventory",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("committed", committed),
		)
		return fmt.Errorf("seed %d seats on %s: %w", committed, key, err)
	}
	return nil
}
