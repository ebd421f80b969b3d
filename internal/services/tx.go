package services

import (
	"context"

	"wallet-escrow-service/internal/models"
)

// ledgerTx is the slice of the SQL transaction the services operate
// through. *postgresrepo.Tx satisfies it; tests substitute an in-memory
// ledger so the escrow and settlement arithmetic is checked without a
// database.
type ledgerTx interface {
	LockWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	LockWallets(ctx context.Context, walletIDs ...string) (map[string]*models.Wallet, error)
	SumCompleted(ctx context.Context, walletID string) (int64, error)
	SumActiveHolds(ctx context.Context, walletID string) (int64, error)
	AppendTransaction(ctx context.Context, walletID string, txType models.TransactionType, amount int64, status models.TransactionStatus, description string, reference *string) (*models.Transaction, error)
	MarkTransactionStatus(ctx context.Context, transactionID string, from, to models.TransactionStatus) error

	CreateHold(ctx context.Context, walletID string, amount int64, reason models.HoldReason, referenceID string) (*models.Hold, error)
	LockHold(ctx context.Context, holdID string) (*models.Hold, error)
	ResolveHold(ctx context.Context, holdID string, to models.HoldStatus) error
	ActiveHoldByReference(ctx context.Context, referenceID string) (*models.Hold, error)
	HoldTransaction(ctx context.Context, walletID, referenceID string) (*models.Transaction, error)

	LockProduct(ctx context.Context, productID string) (*models.Product, error)
	WinningBid(ctx context.Context, productID string) (*models.Bid, error)
	InsertWinningBid(ctx context.Context, bidID, productID, userID string, amount int64) (*models.Bid, error)
	ClearWinningBid(ctx context.Context, productID string) error
	SetCurrentBid(ctx context.Context, productID string, amount int64) error
	SetProductStatus(ctx context.Context, productID string, from, to models.ProductStatus) error

	CreateOrder(ctx context.Context, buyerID, sellerID, productID string, totalAmount int64) (*models.Order, error)
	LockOrder(ctx context.Context, orderID string) (*models.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, from, to models.OrderStatus) error
	CompletedTransactionsByReference(ctx context.Context, reference string) ([]models.Transaction, error)
}
