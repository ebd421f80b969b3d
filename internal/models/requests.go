package models

// Request and response models for the HTTP facade. Monetary amounts
// cross the boundary as decimal strings ("150.00") or integer minor
// units; floats are never accepted as authoritative input.

type DepositRequest struct {
	Amount     string `json:"amount" validate:"required"`
	PaymentRef string `json:"paymentRef" validate:"required"`
}

type WithdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type PlaceBidRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type WalletCreateResponse struct {
	WalletID string `json:"walletId"`
	Balance  int64  `json:"balance"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type BalanceResponse struct {
	WalletID string `json:"walletId"`
	Balance
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	Total        int64         `json:"total"`
	TotalPages   int           `json:"totalPages"`
}

// BidResponse carries the refreshed bidding state for the UI re-render.
type BidResponse struct {
	BidID             string `json:"bidId"`
	ProductID         string `json:"productId"`
	Amount            int64  `json:"amount"`
	CurrentBid        int64  `json:"currentBid"`
	MinimumAcceptable int64  `json:"minimumAcceptable"`
	IsWinning         bool   `json:"isWinning"`
}

type OrderResponse struct {
	Order  Order  `json:"order"`
	Status string `json:"status"`
}

// WalletReport is one row of the admin aggregate reporting hook.
type WalletReport struct {
	UserID           string          `db:"user_id" json:"userId"`
	WalletID         string          `db:"wallet_id" json:"walletId"`
	Type             TransactionType `db:"type" json:"type"`
	TransactionCount int64           `db:"transaction_count" json:"transactionCount"`
	TotalAmount      int64           `db:"total_amount" json:"totalAmount"`
}
