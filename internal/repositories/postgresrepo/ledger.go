package postgresrepo

import (
	"context"
	"fmt"

	"wallet-escrow-service/internal/models"

	"github.com/google/uuid"
)

// The ledger is append-only: inserting a transaction and appending a
// status-change event are the only mutation primitives. There is no
// update or delete of ledger rows; the transactions.status column is a
// materialized copy of the latest event, refreshed in the same SQL
// transaction that appends it.

// AppendTransaction appends one ledger entry.
func (t *Tx) AppendTransaction(
	ctx context.Context,
	walletID string,
	txType models.TransactionType,
	amount int64,
	status models.TransactionStatus,
	description string,
	reference *string,
) (*models.Transaction, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	txID := uuid.New().String()

	query := `
		INSERT INTO transactions
		(id, wallet_id, type, amount, status, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, wallet_id, type, amount, status, description, reference, created_at
	`

	var txn models.Transaction
	err := t.tx.QueryRowxContext(ctx, query,
		txID, walletID, txType, amount, status, description, reference,
	).StructScan(&txn)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	return &txn, nil
}

// MarkTransactionStatus records a PENDING -> terminal transition as an
// appended event and refreshes the materialized status column. The
// guarded UPDATE makes the transition race-free: a second caller sees
// ErrStatusConflict instead of silently re-transitioning.
func (t *Tx) MarkTransactionStatus(
	ctx context.Context,
	transactionID string,
	from, to models.TransactionStatus,
) error {
	eventQuery := `
		INSERT INTO transaction_events (transaction_id, from_status, to_status, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := t.tx.ExecContext(ctx, eventQuery, transactionID, from, to); err != nil {
		return fmt.Errorf("failed to append transaction event: %w", err)
	}

	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := t.tx.ExecContext(ctx, query, to, transactionID, from)
	if err != nil {
		return fmt.Errorf("failed to refresh transaction status: %w", err)
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

// SumCompleted replays the ledger: the balance is the sum of COMPLETED
// transaction amounts, nothing else.
func (t *Tx) SumCompleted(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE wallet_id = $1 AND status = $2
	`
	err := t.tx.GetContext(ctx, &sum, query, walletID, models.TransactionStatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return sum, nil
}

// SumActiveHolds is the locked balance: the sum of ACTIVE hold amounts.
func (t *Tx) SumActiveHolds(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM holds
		WHERE wallet_id = $1 AND status = $2
	`
	err := t.tx.GetContext(ctx, &sum, query, walletID, models.HoldStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to sum active holds: %w", err)
	}
	return sum, nil
}

// SumCompleted outside a transaction, for non-authoritative reads.
func (s *Store) SumCompleted(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE wallet_id = $1 AND status = $2
	`
	err := s.db.GetContext(ctx, &sum, query, walletID, models.TransactionStatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return sum, nil
}

func (s *Store) SumActiveHolds(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM holds
		WHERE wallet_id = $1 AND status = $2
	`
	err := s.db.GetContext(ctx, &sum, query, walletID, models.HoldStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to sum active holds: %w", err)
	}
	return sum, nil
}

// ListTransactions returns a page of a wallet's ledger, newest first,
// optionally filtered by type and status.
func (s *Store) ListTransactions(
	ctx context.Context,
	walletID string,
	page, pageSize int,
	typeFilter models.TransactionType,
	statusFilter models.TransactionStatus,
) ([]models.Transaction, int64, error) {
	where := `WHERE wallet_id = $1`
	args := []interface{}{walletID}

	if typeFilter != "" {
		args = append(args, typeFilter)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if statusFilter != "" {
		args = append(args, statusFilter)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions ` + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
		SELECT id, wallet_id, type, amount, status, description, reference, created_at
		FROM transactions
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	transactions := []models.Transaction{}
	if err := s.db.SelectContext(ctx, &transactions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// WalletReports aggregates transaction counts and sums per user and
// type for the admin reporting hook. Read-only.
func (s *Store) WalletReports(ctx context.Context) ([]models.WalletReport, error) {
	query := `
		SELECT w.user_id, t.wallet_id, t.type,
		       COUNT(*) AS transaction_count,
		       COALESCE(SUM(t.amount), 0) AS total_amount
		FROM transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE t.status = $1
		GROUP BY w.user_id, t.wallet_id, t.type
		ORDER BY w.user_id, t.type
	`

	reports := []models.WalletReport{}
	if err := s.db.SelectContext(ctx, &reports, query, models.TransactionStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to build wallet reports: %w", err)
	}
	return reports, nil
}
