package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-escrow-service/internal/models"
)

// LockProduct serializes bidding state changes on one product inside
// the database.
func (t *Tx) LockProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	query := `
		SELECT id, seller_id, title, minimum_bid, min_increment, current_bid,
		       buy_now_price, auction_end_at, status
		FROM products WHERE id = $1 FOR UPDATE
	`
	err := t.tx.GetContext(ctx, &product, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &product, nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	query := `
		SELECT id, seller_id, title, minimum_bid, min_increment, current_bid,
		       buy_now_price, auction_end_at, status
		FROM products WHERE id = $1
	`
	err := s.db.GetContext(ctx, &product, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// DueAuctionIDs lists ACTIVE products whose auction end has passed.
func (s *Store) DueAuctionIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	query := `SELECT id FROM products WHERE status = $1 AND auction_end_at <= NOW()`
	if err := s.db.SelectContext(ctx, &ids, query, models.ProductStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list due auctions: %w", err)
	}
	return ids, nil
}

// WinningBid returns the current winning bid for a product, if any.
func (t *Tx) WinningBid(ctx context.Context, productID string) (*models.Bid, error) {
	var bid models.Bid
	query := `
		SELECT id, product_id, user_id, amount, is_winning, created_at
		FROM bids WHERE product_id = $1 AND is_winning = TRUE
	`
	err := t.tx.GetContext(ctx, &bid, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get winning bid: %w", err)
	}
	return &bid, nil
}

// InsertWinningBid demotes the previous winner and inserts the new bid
// as winning. The bid id is supplied by the caller because the escrow
// hold created just before references it. The partial unique index on
// (product_id) WHERE is_winning backs the at-most-one-winner invariant.
func (t *Tx) InsertWinningBid(ctx context.Context, bidID, productID, userID string, amount int64) (*models.Bid, error) {
	demote := `UPDATE bids SET is_winning = FALSE WHERE product_id = $1 AND is_winning = TRUE`
	if _, err := t.tx.ExecContext(ctx, demote, productID); err != nil {
		return nil, fmt.Errorf("failed to demote winning bid: %w", err)
	}

	query := `
		INSERT INTO bids (id, product_id, user_id, amount, is_winning, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		RETURNING id, product_id, user_id, amount, is_winning, created_at
	`
	var bid models.Bid
	err := t.tx.QueryRowxContext(ctx, query, bidID, productID, userID, amount).StructScan(&bid)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bid: %w", err)
	}
	return &bid, nil
}

// ClearWinningBid demotes a product's winning bid without replacing it.
// Used when a direct purchase ends the auction: the standing bid loses
// and its escrow is released in the same transaction. No rows matched
// is fine; the product may never have had a bid.
func (t *Tx) ClearWinningBid(ctx context.Context, productID string) error {
	query := `UPDATE bids SET is_winning = FALSE WHERE product_id = $1 AND is_winning = TRUE`
	if _, err := t.tx.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to clear winning bid: %w", err)
	}
	return nil
}

// SetCurrentBid refreshes the product's current bid.
func (t *Tx) SetCurrentBid(ctx context.Context, productID string, amount int64) error {
	query := `UPDATE products SET current_bid = $1 WHERE id = $2`
	result, err := t.tx.ExecContext(ctx, query, amount, productID)
	if err != nil {
		return fmt.Errorf("failed to set current bid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}

// SetProductStatus advances a product's lifecycle (ACTIVE -> CLOSED ->
// SOLD/UNSOLD). The guard keeps two sweeps from closing the same
// auction twice.
func (t *Tx) SetProductStatus(ctx context.Context, productID string, from, to models.ProductStatus) error {
	query := `UPDATE products SET status = $1 WHERE id = $2 AND status = $3`
	result, err := t.tx.ExecContext(ctx, query, to, productID, from)
	if err != nil {
		return fmt.Errorf("failed to set product status: %w", err)
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
