package models

import "time"

type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypePurchase      TransactionType = "PURCHASE"
	TransactionTypeRefund        TransactionType = "REFUND"
	TransactionTypeAuctionHold   TransactionType = "AUCTION_HOLD"
	TransactionTypeAuctionRel    TransactionType = "AUCTION_RELEASE"
	TransactionTypeSellerPayout  TransactionType = "SELLER_PAYOUT"
	TransactionTypePlatformFee   TransactionType = "PLATFORM_FEE"
	TransactionTypeEscrowHold    TransactionType = "ESCROW_HOLD"
	TransactionTypeEscrowRelease TransactionType = "ESCROW_RELEASE"
)

// ValidTransactionType reports whether t belongs to the closed set of
// transaction types. Unknown values are rejected at the API boundary
// instead of being passed through.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePurchase,
		TransactionTypeRefund, TransactionTypeAuctionHold, TransactionTypeAuctionRel,
		TransactionTypeSellerPayout, TransactionTypePlatformFee,
		TransactionTypeEscrowHold, TransactionTypeEscrowRelease:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

type HoldReason string

const (
	HoldReasonBid         HoldReason = "BID"
	HoldReasonOrderEscrow HoldReason = "ORDER_ESCROW"
)

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "ACTIVE"
	HoldStatusReleased  HoldStatus = "RELEASED"
	HoldStatusForfeited HoldStatus = "FORFEITED"
)

// Database models

type Wallet struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transaction is an immutable ledger entry. Amount is in minor units,
// signed: positive credits the wallet, negative debits it. Rows are
// never updated except for the materialized status column, which is
// refreshed alongside an appended TransactionEvent.
type Transaction struct {
	ID          string            `db:"id" json:"id"`
	WalletID    string            `db:"wallet_id" json:"walletId"`
	Type        TransactionType   `db:"type" json:"type"`
	Amount      int64             `db:"amount" json:"amount"`
	Status      TransactionStatus `db:"status" json:"status"`
	Description string            `db:"description" json:"description"`
	Reference   *string           `db:"reference" json:"reference,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
}

// TransactionEvent records one status transition, append-only.
type TransactionEvent struct {
	ID            int64             `db:"id"`
	TransactionID string            `db:"transaction_id"`
	FromStatus    TransactionStatus `db:"from_status"`
	ToStatus      TransactionStatus `db:"to_status"`
	CreatedAt     time.Time         `db:"created_at"`
}

// Hold reserves funds against a wallet's available balance without
// debiting its total balance. The amount counts toward lockedBalance
// while the status is ACTIVE.
type Hold struct {
	ID          string     `db:"id" json:"id"`
	WalletID    string     `db:"wallet_id" json:"walletId"`
	Amount      int64      `db:"amount" json:"amount"`
	Reason      HoldReason `db:"reason" json:"reason"`
	ReferenceID string     `db:"reference_id" json:"referenceId"`
	Status      HoldStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// Balance is the projection computed from the ledger and active holds.
type Balance struct {
	Balance          int64 `json:"balance"`
	LockedBalance    int64 `json:"lockedBalance"`
	AvailableBalance int64 `json:"availableBalance"`
}
