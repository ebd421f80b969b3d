package models

import "time"

// Event kinds published to the wallet events topic.
const (
	EventWalletDeposited = "wallet.deposited"
	EventWalletWithdrawn = "wallet.withdrawn"
	EventBidPlaced       = "bid.placed"
	EventBidOutbid       = "bid.outbid"
	EventAuctionClosed   = "auction.closed"
	EventOrderSettled    = "order.settled"
	EventOrderRefunded   = "order.refunded"
)

// WalletEvent is the Kafka envelope for wallet and auction events.
// Messages are keyed by WalletID so that all events touching one wallet
// land on the same partition and keep their order.
type WalletEvent struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	WalletID   string    `json:"wallet_id"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	PrevAmount int64     `json:"prev_amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
