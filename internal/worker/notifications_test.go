package worker

import (
	"testing"

	"wallet-escrow-service/internal/models"
)

func TestNotificationKind(t *testing.T) {
	tests := []struct {
		name     string
		event    models.WalletEvent
		wantKind models.NotificationKind
		wantOK   bool
	}{
		{
			name:     "outbid",
			event:    models.WalletEvent{Kind: models.EventBidOutbid, UserID: "u-1"},
			wantKind: models.NotificationKindOutbid,
			wantOK:   true,
		},
		{
			name:     "auction closed with winner",
			event:    models.WalletEvent{Kind: models.EventAuctionClosed, UserID: "u-1", OrderID: "o-1"},
			wantKind: models.NotificationKindAuctionWon,
			wantOK:   true,
		},
		{
			name:   "auction closed without bids",
			event:  models.WalletEvent{Kind: models.EventAuctionClosed},
			wantOK: false,
		},
		{
			name:     "order settled",
			event:    models.WalletEvent{Kind: models.EventOrderSettled, UserID: "u-1", OrderID: "o-1"},
			wantKind: models.NotificationKindOrderSettled,
			wantOK:   true,
		},
		{
			name:     "order refunded",
			event:    models.WalletEvent{Kind: models.EventOrderRefunded, UserID: "u-1", OrderID: "o-1"},
			wantKind: models.NotificationKindRefund,
			wantOK:   true,
		},
		{
			name:   "deposit is not user facing",
			event:  models.WalletEvent{Kind: models.EventWalletDeposited, UserID: "u-1"},
			wantOK: false,
		},
		{
			name:   "own bid is not user facing",
			event:  models.WalletEvent{Kind: models.EventBidPlaced, UserID: "u-1"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := notificationKind(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("notificationKind() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && kind != tt.wantKind {
				t.Errorf("notificationKind() = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}
