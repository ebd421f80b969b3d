package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-escrow-service/internal/models"

	"github.com/google/uuid"
)

// CreateHold inserts an ACTIVE hold. Admission (available balance) is
// the escrow service's job and happens under the wallet row lock before
// this insert.
func (t *Tx) CreateHold(
	ctx context.Context,
	walletID string,
	amount int64,
	reason models.HoldReason,
	referenceID string,
) (*models.Hold, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	holdID := uuid.New().String()

	query := `
		INSERT INTO holds (id, wallet_id, amount, reason, reference_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, wallet_id, amount, reason, reference_id, status, created_at, resolved_at
	`

	var hold models.Hold
	err := t.tx.QueryRowxContext(ctx, query,
		holdID, walletID, amount, reason, referenceID, models.HoldStatusActive,
	).StructScan(&hold)
	if err != nil {
		return nil, fmt.Errorf("failed to create hold: %w", err)
	}

	return &hold, nil
}

// LockHold fetches a hold FOR UPDATE so its resolution is serialized.
func (t *Tx) LockHold(ctx context.Context, holdID string) (*models.Hold, error) {
	var hold models.Hold
	query := `
		SELECT id, wallet_id, amount, reason, reference_id, status, created_at, resolved_at
		FROM holds WHERE id = $1 FOR UPDATE
	`
	err := t.tx.GetContext(ctx, &hold, query, holdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to lock hold: %w", err)
	}
	return &hold, nil
}

// ResolveHold moves an ACTIVE hold to RELEASED or FORFEITED. The guard
// on the current status makes double resolution visible to the caller.
func (t *Tx) ResolveHold(ctx context.Context, holdID string, to models.HoldStatus) error {
	query := `
		UPDATE holds SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := t.tx.ExecContext(ctx, query, to, holdID, models.HoldStatusActive)
	if err != nil {
		return fmt.Errorf("failed to resolve hold: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStatusConflict
	}

	return nil
}

// ActiveHoldByReference finds the ACTIVE hold backing a bid or order.
func (t *Tx) ActiveHoldByReference(ctx context.Context, referenceID string) (*models.Hold, error) {
	var hold models.Hold
	query := `
		SELECT id, wallet_id, amount, reason, reference_id, status, created_at, resolved_at
		FROM holds
		WHERE reference_id = $1 AND status = $2
		FOR UPDATE
	`
	err := t.tx.GetContext(ctx, &hold, query, referenceID, models.HoldStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to get hold by reference: %w", err)
	}
	return &hold, nil
}

// HoldTransaction finds the PENDING ledger entry that was paired with a
// hold at placement time.
func (t *Tx) HoldTransaction(ctx context.Context, walletID, referenceID string) (*models.Transaction, error) {
	var txn models.Transaction
	query := `
		SELECT id, wallet_id, type, amount, status, description, reference, created_at
		FROM transactions
		WHERE wallet_id = $1 AND reference = $2
		  AND type IN ($3, $4) AND status = $5
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := t.tx.GetContext(ctx, &txn, query,
		walletID, referenceID,
		models.TransactionTypeAuctionHold, models.TransactionTypeEscrowHold,
		models.TransactionStatusPending,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get hold transaction: %w", err)
	}
	return &txn, nil
}
