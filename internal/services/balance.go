package services

import (
	"context"
	"errors"
	"time"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/postgresrepo"
	"wallet-escrow-service/internal/repositories/redisrepo"

	"github.com/sirupsen/logrus"
)

// BalanceService is the projector: the authoritative balance is always
// what a replay of the ledger produces. The Redis copy only serves
// non-authoritative reads and is removed on every mutation.
type BalanceService struct {
	store *postgresrepo.Store
	cache *redisrepo.BalanceCache
}

func NewBalanceService(store *postgresrepo.Store, cache *redisrepo.BalanceCache) *BalanceService {
	return &BalanceService{
		store: store,
		cache: cache,
	}
}

func project(balance, locked int64) models.Balance {
	return models.Balance{
		Balance:          balance,
		LockedBalance:    locked,
		AvailableBalance: balance - locked,
	}
}

// GetBalance serves reads: cache first, then the ledger, then refresh
// the cache in the background.
func (s *BalanceService) GetBalance(ctx context.Context, walletID string) (models.Balance, error) {
	cached, err := s.cache.GetBalance(ctx, walletID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redisrepo.ErrBalanceNotFound) {
		logrus.WithError(err).WithField("wallet_id", walletID).
			Warn("balance cache read failed, falling back to ledger")
	}

	balance, err := s.computeFromStore(ctx, walletID)
	if err != nil {
		return models.Balance{}, err
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.cache.SetBalance(cacheCtx, walletID, balance); err != nil {
			logrus.WithError(err).WithField("wallet_id", walletID).
				Warn("failed to refresh balance cache")
		}
	}()

	return balance, nil
}

// BalanceInTx recomputes the projection inside the caller's SQL
// transaction. Every admission decision (hold placement, withdrawal)
// uses this, after the wallet row lock is held.
func (s *BalanceService) BalanceInTx(ctx context.Context, tx ledgerTx, walletID string) (models.Balance, error) {
	completed, err := tx.SumCompleted(ctx, walletID)
	if err != nil {
		return models.Balance{}, err
	}
	locked, err := tx.SumActiveHolds(ctx, walletID)
	if err != nil {
		return models.Balance{}, err
	}

	balance := project(completed, locked)
	if balance.AvailableBalance < 0 || balance.LockedBalance < 0 {
		// The engine never admits an operation that would produce this,
		// so seeing it means the ledger and holds disagree.
		logrus.WithFields(logrus.Fields{
			"wallet_id":      walletID,
			"balance":        balance.Balance,
			"locked_balance": balance.LockedBalance,
		}).Error("balance invariant violated")
	}
	return balance, nil
}

// Invalidate drops the cached projection after a committed mutation.
func (s *BalanceService) Invalidate(ctx context.Context, walletIDs ...string) {
	for _, id := range walletIDs {
		if err := s.cache.DeleteBalance(ctx, id); err != nil {
			logrus.WithError(err).WithField("wallet_id", id).
				Warn("failed to invalidate balance cache")
		}
	}
}

func (s *BalanceService) computeFromStore(ctx context.Context, walletID string) (models.Balance, error) {
	completed, err := s.store.SumCompleted(ctx, walletID)
	if err != nil {
		return models.Balance{}, err
	}
	locked, err := s.store.SumActiveHolds(ctx, walletID)
	if err != nil {
		return models.Balance{}, err
	}
	return project(completed, locked), nil
}
