package models

import "time"

type ProductStatus string

const (
	ProductStatusActive ProductStatus = "ACTIVE"
	ProductStatusClosed ProductStatus = "CLOSED"
	ProductStatusSold   ProductStatus = "SOLD"
	ProductStatusUnsold ProductStatus = "UNSOLD"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// Product is the auction-relevant slice of a catalog item. Catalog CRUD
// lives outside this service; the engine only reads and advances the
// bidding state.
type Product struct {
	ID           string        `db:"id" json:"id"`
	SellerID     string        `db:"seller_id" json:"sellerId"`
	Title        string        `db:"title" json:"title"`
	MinimumBid   int64         `db:"minimum_bid" json:"minimumBid"`
	MinIncrement int64         `db:"min_increment" json:"minIncrement"`
	CurrentBid   *int64        `db:"current_bid" json:"currentBid,omitempty"`
	BuyNowPrice  *int64        `db:"buy_now_price" json:"buyNowPrice,omitempty"`
	AuctionEndAt time.Time     `db:"auction_end_at" json:"auctionEndAt"`
	Status       ProductStatus `db:"status" json:"status"`
}

// MinimumAcceptable is the smallest amount the next bid may carry.
func (p *Product) MinimumAcceptable() int64 {
	if p.CurrentBid != nil {
		return *p.CurrentBid + p.MinIncrement
	}
	return p.MinimumBid
}

type Bid struct {
	ID        string    `db:"id" json:"id"`
	ProductID string    `db:"product_id" json:"productId"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    int64     `db:"amount" json:"amount"`
	IsWinning bool      `db:"is_winning" json:"isWinning"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Order struct {
	ID          string      `db:"id" json:"id"`
	BuyerID     string      `db:"buyer_id" json:"buyerId"`
	SellerID    string      `db:"seller_id" json:"sellerId"`
	ProductID   string      `db:"product_id" json:"productId"`
	TotalAmount int64       `db:"total_amount" json:"totalAmount"`
	Status      OrderStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// SettlementIncident captures an unbalanced settlement for manual
// reconciliation. The settlement transaction rolls back, so this record
// is the only surviving trace of the attempt.
type SettlementIncident struct {
	ID             string    `db:"id" json:"id"`
	OrderID        string    `db:"order_id" json:"orderId"`
	ProductID      string    `db:"product_id" json:"productId"`
	BuyerID        string    `db:"buyer_id" json:"buyerId"`
	SellerID       string    `db:"seller_id" json:"sellerId"`
	PurchaseAmount int64     `db:"purchase_amount" json:"purchaseAmount"`
	PayoutAmount   int64     `db:"payout_amount" json:"payoutAmount"`
	FeeAmount      int64     `db:"fee_amount" json:"feeAmount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

type NotificationKind string

const (
	NotificationKindOutbid       NotificationKind = "OUTBID"
	NotificationKindAuctionWon   NotificationKind = "AUCTION_WON"
	NotificationKindOrderSettled NotificationKind = "ORDER_SETTLED"
	NotificationKindRefund       NotificationKind = "REFUND_ISSUED"
)

// Notification is written by the notifier worker from the event stream.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Kind      NotificationKind `db:"kind" json:"kind"`
	Payload   []byte           `db:"payload" json:"payload"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
