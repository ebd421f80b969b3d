package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"wallet-escrow-service/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateWallet creates a wallet for a user; one wallet per user.
func (s *Store) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	walletID := uuid.New().String()

	query := `
		INSERT INTO wallets (id, user_id)
		VALUES ($1, $2)
		RETURNING id, user_id, created_at, updated_at
	`

	var wallet models.Wallet
	err := s.db.QueryRowxContext(ctx, query, walletID, userID).StructScan(&wallet)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrWalletExists
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return &wallet, nil
}

// GetWalletByUser gets the wallet owned by a user.
func (s *Store) GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet

	query := `SELECT id, user_id, created_at, updated_at FROM wallets WHERE user_id = $1`

	err := s.db.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet from postgres: %w", err)
	}

	return &wallet, nil
}

// LockWallet takes the row lock that serializes every balance-affecting
// operation on one wallet within the database.
func (t *Tx) LockWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `SELECT id, user_id, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &wallet, query, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

// LockWallets locks several wallet rows in lexicographic id order, the
// fixed global order that prevents cross-wallet deadlock.
func (t *Tx) LockWallets(ctx context.Context, walletIDs ...string) (map[string]*models.Wallet, error) {
	ids := make([]string, 0, len(walletIDs))
	seen := make(map[string]struct{}, len(walletIDs))
	for _, id := range walletIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	wallets := make(map[string]*models.Wallet, len(ids))
	for _, id := range ids {
		w, err := t.LockWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		wallets[id] = w
	}
	return wallets, nil
}
