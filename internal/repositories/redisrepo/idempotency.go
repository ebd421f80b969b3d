package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyExpiration = 24 * time.Hour

	// inFlightMarker is stored while the first request with a key is
	// still executing, so a concurrent retry gets Busy instead of a
	// second execution.
	inFlightMarker = "__in_flight__"
)

var (
	ErrIdempotencyInFlight = errors.New("request with this idempotency key is in flight")
)

// IdempotencyStore replays the stored response of a mutating call when
// the UI retries it with the same Idempotency-Key.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idem:",
	}
}

// Begin claims a key. It returns (nil, nil) when the key is fresh, the
// stored response when the call already completed, and
// ErrIdempotencyInFlight when the first attempt has not finished yet.
func (r *IdempotencyStore) Begin(ctx context.Context, key string) ([]byte, error) {
	claimed, err := r.client.SetNX(ctx, r.prefix+key, inFlightMarker, idempotencyExpiration).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	stored, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Claim expired between SetNX and Get; treat as in flight.
			return nil, ErrIdempotencyInFlight
		}
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if stored == inFlightMarker {
		return nil, ErrIdempotencyInFlight
	}
	return []byte(stored), nil
}

// Complete stores the response to replay on later retries.
func (r *IdempotencyStore) Complete(ctx context.Context, key string, response []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, response, idempotencyExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

// Abort frees a claimed key after a failed attempt so the client can
// retry the operation itself.
func (r *IdempotencyStore) Abort(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
