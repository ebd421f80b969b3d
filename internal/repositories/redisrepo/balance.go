package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-escrow-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	balanceExpiration = 5 * time.Minute
)

var (
	ErrBalanceNotFound = errors.New("balance not found in cache")
)

// BalanceCache is a derived read-side copy of the projection. It is
// never consulted for admission decisions; mutations delete the key and
// reads refresh it lazily.
type BalanceCache struct {
	client *redis.Client
	prefix string
}

func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "wallet:",
	}
}

func (r *BalanceCache) SetBalance(ctx context.Context, walletID string, balance models.Balance) error {
	key := r.balanceKey(walletID)

	b, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}

	if err := r.client.Set(ctx, key, b, balanceExpiration).Err(); err != nil {
		return fmt.Errorf("failed to set balance in redis: %w", err)
	}

	return nil
}

func (r *BalanceCache) GetBalance(ctx context.Context, walletID string) (models.Balance, error) {
	key := r.balanceKey(walletID)

	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Balance{}, ErrBalanceNotFound
		}
		return models.Balance{}, fmt.Errorf("failed to get balance from redis: %w", err)
	}

	var balance models.Balance
	if err := json.Unmarshal([]byte(raw), &balance); err != nil {
		return models.Balance{}, fmt.Errorf("failed to parse balance from redis: %w", err)
	}

	return balance, nil
}

func (r *BalanceCache) DeleteBalance(ctx context.Context, walletID string) error {
	key := r.balanceKey(walletID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete balance from redis: %w", err)
	}

	return nil
}

func (r *BalanceCache) balanceKey(walletID string) string {
	return r.prefix + walletID + ":balance"
}
