package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-escrow-service/internal/models"
)

func int64ptr(v int64) *int64 { return &v }

func TestValidateBid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	activeProduct := func() *models.Product {
		return &models.Product{
			ID:           "p-1",
			SellerID:     "seller-1",
			Status:       models.ProductStatusActive,
			MinimumBid:   10000,
			MinIncrement: 500,
			AuctionEndAt: now.Add(time.Hour),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.Product)
		userID  string
		amount  int64
		wantErr error
	}{
		{
			name:   "first bid at minimum",
			userID: "buyer-1",
			amount: 10000,
		},
		{
			name:   "first bid above minimum",
			userID: "buyer-1",
			amount: 12500,
		},
		{
			name:    "first bid below minimum",
			userID:  "buyer-1",
			amount:  9999,
			wantErr: ErrBidTooLow,
		},
		{
			name:   "raise by exactly the increment",
			mutate: func(p *models.Product) { p.CurrentBid = int64ptr(12000) },
			userID: "buyer-2",
			amount: 12500,
		},
		{
			name:    "raise below the increment",
			mutate:  func(p *models.Product) { p.CurrentBid = int64ptr(12000) },
			userID:  "buyer-2",
			amount:  12499,
			wantErr: ErrBidTooLow,
		},
		{
			name:    "matching the current bid is too low",
			mutate:  func(p *models.Product) { p.CurrentBid = int64ptr(12000) },
			userID:  "buyer-2",
			amount:  12000,
			wantErr: ErrBidTooLow,
		},
		{
			name:    "seller bids on own product",
			userID:  "seller-1",
			amount:  15000,
			wantErr: ErrSelfBid,
		},
		{
			name:    "closed product",
			mutate:  func(p *models.Product) { p.Status = models.ProductStatusSold },
			userID:  "buyer-1",
			amount:  15000,
			wantErr: ErrAuctionNotActive,
		},
		{
			name:    "auction deadline passed",
			mutate:  func(p *models.Product) { p.AuctionEndAt = now.Add(-time.Second) },
			userID:  "buyer-1",
			amount:  15000,
			wantErr: ErrAuctionNotActive,
		},
		{
			name:    "deadline exactly now",
			mutate:  func(p *models.Product) { p.AuctionEndAt = now },
			userID:  "buyer-1",
			amount:  15000,
			wantErr: ErrAuctionNotActive,
		},
		{
			name: "ended auction reports not active before too low",
			mutate: func(p *models.Product) {
				p.AuctionEndAt = now.Add(-time.Minute)
			},
			userID:  "buyer-1",
			amount:  1,
			wantErr: ErrAuctionNotActive,
		},
		{
			name:    "seller on ended auction still gets not active",
			mutate:  func(p *models.Product) { p.Status = models.ProductStatusUnsold },
			userID:  "seller-1",
			amount:  15000,
			wantErr: ErrAuctionNotActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := activeProduct()
			if tt.mutate != nil {
				tt.mutate(product)
			}

			err := ValidateBid(product, tt.userID, tt.amount, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBid() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProductMinimumAcceptable(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		want    int64
	}{
		{
			name:    "no bids yet",
			product: models.Product{MinimumBid: 10000, MinIncrement: 500},
			want:    10000,
		},
		{
			name:    "with a current bid",
			product: models.Product{MinimumBid: 10000, MinIncrement: 500, CurrentBid: int64ptr(14000)},
			want:    14500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.MinimumAcceptable(); got != tt.want {
				t.Errorf("MinimumAcceptable() = %d, want %d", got, tt.want)
			}
		})
	}
}

func newTestBidding(ledger *fakeLedger, now time.Time) *BiddingService {
	return &BiddingService{
		escrow: newTestEscrow(),
		now:    func() time.Time { return now },
	}
}

func TestPlaceBidTransfersHoldToNewWinner(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ledger := newFakeLedger()
	ledger.addWallet("w-a", "user-a", 20000)
	ledger.addWallet("w-b", "user-b", 30000)
	ledger.addProduct(&models.Product{
		ID:           "p-1",
		SellerID:     "seller-1",
		Status:       models.ProductStatusActive,
		MinimumBid:   10000,
		MinIncrement: 500,
		AuctionEndAt: now.Add(time.Hour),
	})

	bidding := newTestBidding(ledger, now)

	first, outbid, err := bidding.placeBidInTx(ctx, ledger, "p-1", "user-a", "w-a", 10000)
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}
	if outbid != nil {
		t.Fatalf("first bid displaced someone: %+v", outbid)
	}
	if !first.IsWinning || first.CurrentBid != 10000 {
		t.Errorf("first bid response = %+v", first)
	}
	assertBalance(t, ledger, "w-a", 20000, 10000)

	second, outbid, err := bidding.placeBidInTx(ctx, ledger, "p-1", "user-b", "w-b", 11000)
	if err != nil {
		t.Fatalf("second bid: %v", err)
	}
	if outbid == nil || outbid.WalletID != "w-a" || outbid.UserID != "user-a" || outbid.Amount != 10000 {
		t.Fatalf("outbid = %+v, want user-a at 10000", outbid)
	}
	if second.MinimumAcceptable != 11500 {
		t.Errorf("minimum acceptable = %d, want 11500", second.MinimumAcceptable)
	}

	// The reservation moved: nothing locked on the loser, the new
	// amount locked on the winner.
	assertBalance(t, ledger, "w-a", 20000, 0)
	assertBalance(t, ledger, "w-b", 30000, 11000)

	winning, err := ledger.WinningBid(ctx, "p-1")
	if err != nil {
		t.Fatalf("WinningBid: %v", err)
	}
	if winning == nil || winning.UserID != "user-b" || winning.Amount != 11000 {
		t.Errorf("winning bid = %+v, want user-b at 11000", winning)
	}
}

func TestPlaceBidInsufficientFundsLeavesWinnerIntact(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ledger := newFakeLedger()
	ledger.addWallet("w-a", "user-a", 20000)
	ledger.addWallet("w-b", "user-b", 5000)
	ledger.addProduct(&models.Product{
		ID:           "p-1",
		SellerID:     "seller-1",
		Status:       models.ProductStatusActive,
		MinimumBid:   10000,
		MinIncrement: 500,
		AuctionEndAt: now.Add(time.Hour),
	})

	bidding := newTestBidding(ledger, now)

	if _, _, err := bidding.placeBidInTx(ctx, ledger, "p-1", "user-a", "w-a", 10000); err != nil {
		t.Fatalf("first bid: %v", err)
	}

	_, _, err := bidding.placeBidInTx(ctx, ledger, "p-1", "user-b", "w-b", 10500)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// The rejected raise left the standing winner and their hold alone.
	assertBalance(t, ledger, "w-a", 20000, 10000)
	winning, err := ledger.WinningBid(ctx, "p-1")
	if err != nil {
		t.Fatalf("WinningBid: %v", err)
	}
	if winning == nil || winning.UserID != "user-a" {
		t.Errorf("winning bid = %+v, want user-a", winning)
	}
}
