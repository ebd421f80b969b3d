package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-escrow-service/internal/models"

	"github.com/google/uuid"
)

func (t *Tx) CreateOrder(
	ctx context.Context,
	buyerID, sellerID, productID string,
	totalAmount int64,
) (*models.Order, error) {
	if totalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	query := `
		INSERT INTO orders (id, buyer_id, seller_id, product_id, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, buyer_id, seller_id, product_id, total_amount, status, created_at, updated_at
	`

	var order models.Order
	err := t.tx.QueryRowxContext(ctx, query,
		uuid.New().String(), buyerID, sellerID, productID, totalAmount, models.OrderStatusPending,
	).StructScan(&order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &order, nil
}

func (t *Tx) LockOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	query := `
		SELECT id, buyer_id, seller_id, product_id, total_amount, status, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE
	`
	err := t.tx.GetContext(ctx, &order, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &order, nil
}

// SetOrderStatus advances an order, guarded by the current status so
// settlement and cancellation cannot race each other.
func (t *Tx) SetOrderStatus(ctx context.Context, orderID string, from, to models.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	result, err := t.tx.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
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

// RecordSettlementIncident writes the reconciliation record for an
// unbalanced settlement. It runs on the pool, not inside the settlement
// transaction, because that transaction is about to roll back and the
// record must outlive it; order_id carries no foreign key since the
// order row itself vanishes with the rollback.
func (s *Store) RecordSettlementIncident(ctx context.Context, incident models.SettlementIncident) error {
	query := `
		INSERT INTO settlement_incidents
		(id, order_id, product_id, buyer_id, seller_id, purchase_amount, payout_amount, fee_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := s.db.ExecContext(ctx, query,
		incident.ID, incident.OrderID, incident.ProductID,
		incident.BuyerID, incident.SellerID,
		incident.PurchaseAmount, incident.PayoutAmount, incident.FeeAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to record settlement incident: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	query := `
		SELECT id, buyer_id, seller_id, product_id, total_amount, status, created_at, updated_at
		FROM orders WHERE id = $1
	`
	err := s.db.GetContext(ctx, &order, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// CompletedTransactionsByReference lists the COMPLETED ledger entries
// correlated with an order, used when reversing a settlement.
func (t *Tx) CompletedTransactionsByReference(ctx context.Context, reference string) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := `
		SELECT id, wallet_id, type, amount, status, description, reference, created_at
		FROM transactions
		WHERE reference = $1 AND status = $2
		ORDER BY created_at ASC
	`
	err := t.tx.SelectContext(ctx, &transactions, query, reference, models.TransactionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by reference: %w", err)
	}
	return transactions, nil
}
