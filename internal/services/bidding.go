package services

import (
	"context"
	"fmt"
	"time"

	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/kafkarepo"
	"wallet-escrow-service/internal/repositories/postgresrepo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Broadcaster pushes live bid updates to connected bidding UIs.
type Broadcaster interface {
	BroadcastBid(productID string, currentBid, minimumAcceptable int64)
}

// BiddingService serializes competing bids per product and moves the
// escrow hold from the previous highest bidder to the new one. A bid is
// never recorded as winning without an ACTIVE hold backing it, and the
// previous hold is only released after the new one exists.
type BiddingService struct {
	store        *postgresrepo.Store
	balances     *BalanceService
	escrow       *EscrowService
	settlement   *SettlementService
	events       *kafkarepo.EventRepository
	productLocks *locks.KeyedMutex
	broadcaster  Broadcaster
	now          func() time.Time
}

func NewBiddingService(
	store *postgresrepo.Store,
	balances *BalanceService,
	escrow *EscrowService,
	settlement *SettlementService,
	events *kafkarepo.EventRepository,
	productLocks *locks.KeyedMutex,
	broadcaster Broadcaster,
) *BiddingService {
	return &BiddingService{
		store:        store,
		balances:     balances,
		escrow:       escrow,
		settlement:   settlement,
		events:       events,
		productLocks: productLocks,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

// ValidateBid applies the bid admission rules in their fixed order.
// Order matters: an ended auction reports AuctionNotActive even when
// the amount would also have been too low.
func ValidateBid(product *models.Product, userID string, amount int64, now time.Time) error {
	if product.Status != models.ProductStatusActive || !product.AuctionEndAt.After(now) {
		return ErrAuctionNotActive
	}
	if amount < product.MinimumAcceptable() {
		return ErrBidTooLow
	}
	if userID == product.SellerID {
		return ErrSelfBid
	}
	return nil
}

// PlaceBid validates and records a bid. Rejections at any step leave no
// residual state: no hold, no transaction, previous winner untouched.
func (s *BiddingService) PlaceBid(ctx context.Context, productID, userID string, amount int64) (*models.BidResponse, error) {
	if err := s.productLocks.Acquire(ctx, productID); err != nil {
		return nil, err
	}
	defer s.productLocks.Release(productID)

	bidderWallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	result, outbid, err := s.placeBidInTx(ctx, tx, productID, userID, bidderWallet.ID, amount)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("place bid error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bid: %w", err)
	}

	invalidate := []string{bidderWallet.ID}
	if outbid != nil {
		invalidate = append(invalidate, outbid.WalletID)
	}
	s.balances.Invalidate(ctx, invalidate...)

	s.publishBidEvents(ctx, result, bidderWallet.ID, userID, outbid)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBid(productID, result.CurrentBid, result.MinimumAcceptable)
	}

	return result, nil
}

// outbidBidder carries what the event stream needs about the displaced
// bidder.
type outbidBidder struct {
	WalletID string
	UserID   string
	Amount   int64
}

func (s *BiddingService) placeBidInTx(
	ctx context.Context,
	tx ledgerTx,
	productID, userID, bidderWalletID string,
	amount int64,
) (*models.BidResponse, *outbidBidder, error) {
	product, err := tx.LockProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	if err := ValidateBid(product, userID, amount, s.now()); err != nil {
		return nil, nil, err
	}

	prevBid, err := tx.WinningBid(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	// Reserve the new bidder's funds first. InsufficientFunds aborts the
	// whole unit with the previous bid and hold untouched. The outbid
	// case transfers the reservation: the new hold exists before the
	// previous bidder's is released.
	bidID := uuid.New().String()
	var outbid *outbidBidder
	if prevBid != nil {
		prevHold, err := tx.ActiveHoldByReference(ctx, prevBid.ID)
		if err != nil {
			return nil, nil, err
		}
		if _, err := s.escrow.MoveHoldInTx(ctx, tx, prevHold.ID, bidderWalletID, amount, bidID); err != nil {
			return nil, nil, err
		}
		outbid = &outbidBidder{
			WalletID: prevHold.WalletID,
			UserID:   prevBid.UserID,
			Amount:   prevBid.Amount,
		}
	} else if _, err := s.escrow.PlaceHoldInTx(ctx, tx, bidderWalletID, amount, models.HoldReasonBid, bidID); err != nil {
		return nil, nil, err
	}

	bid, err := tx.InsertWinningBid(ctx, bidID, productID, userID, amount)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.SetCurrentBid(ctx, productID, amount); err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"bid_id":     bid.ID,
		"user_id":    userID,
		"amount":     amount,
	}).Info("bid placed")

	return &models.BidResponse{
		BidID:             bid.ID,
		ProductID:         productID,
		Amount:            amount,
		CurrentBid:        amount,
		MinimumAcceptable: amount + product.MinIncrement,
		IsWinning:         true,
	}, outbid, nil
}

func (s *BiddingService) publishBidEvents(
	ctx context.Context,
	result *models.BidResponse,
	bidderWalletID, bidderUserID string,
	outbid *outbidBidder,
) {
	now := time.Now().UTC()
	events := []models.WalletEvent{{
		EventID:    uuid.New().String(),
		Kind:       models.EventBidPlaced,
		WalletID:   bidderWalletID,
		UserID:     bidderUserID,
		ProductID:  result.ProductID,
		Amount:     result.Amount,
		OccurredAt: now,
	}}
	if outbid != nil {
		events = append(events, models.WalletEvent{
			EventID:    uuid.New().String(),
			Kind:       models.EventBidOutbid,
			WalletID:   outbid.WalletID,
			UserID:     outbid.UserID,
			ProductID:  result.ProductID,
			Amount:     result.Amount,
			PrevAmount: outbid.Amount,
			OccurredAt: now,
		})
	}

	if err := s.events.Publish(ctx, events...); err != nil {
		logrus.WithError(err).WithField("product_id", result.ProductID).
			Warn("failed to publish bid events")
	}
}

// CloseDueAuctions settles every product whose auction end has passed.
// A product with a winning bid becomes an order settled from the
// existing hold; a product without bids reverts to unsold with no
// monetary side effects.
func (s *BiddingService) CloseDueAuctions(ctx context.Context) {
	due, err := s.store.DueAuctionIDs(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list due auctions")
		return
	}

	for _, productID := range due {
		if err := s.closeAuction(ctx, productID); err != nil {
			logrus.WithError(err).WithField("product_id", productID).
				Error("failed to close auction")
			// Continue closing the other auctions.
		}
	}
}

func (s *BiddingService) closeAuction(ctx context.Context, productID string) error {
	if err := s.productLocks.Acquire(ctx, productID); err != nil {
		return err
	}
	defer s.productLocks.Release(productID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	order, winner, err := s.closeAuctionInTx(ctx, tx, productID)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("close auction error: %w, rollback error: %v", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit auction close: %w", err)
	}

	if winner != nil {
		s.balances.Invalidate(ctx, winner.WalletID)
	}

	event := models.WalletEvent{
		EventID:    uuid.New().String(),
		Kind:       models.EventAuctionClosed,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
	if winner != nil && order != nil {
		event.WalletID = winner.WalletID
		event.UserID = winner.UserID
		event.OrderID = order.ID
		event.Amount = order.TotalAmount
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("product_id", productID).
			Warn("failed to publish auction closed event")
	}

	return nil
}

func (s *BiddingService) closeAuctionInTx(
	ctx context.Context,
	tx ledgerTx,
	productID string,
) (*models.Order, *outbidBidder, error) {
	product, err := tx.LockProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product.Status != models.ProductStatusActive || product.AuctionEndAt.After(s.now()) {
		// Another sweep got here first, or the deadline moved.
		return nil, nil, nil
	}

	winningBid, err := tx.WinningBid(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	if winningBid == nil {
		if err := tx.SetProductStatus(ctx, productID, models.ProductStatusActive, models.ProductStatusUnsold); err != nil {
			return nil, nil, err
		}
		logrus.WithField("product_id", productID).Info("auction closed without bids")
		return nil, nil, nil
	}

	order, err := s.settlement.SettleAuctionWinInTx(ctx, tx, product, winningBid)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.SetProductStatus(ctx, productID, models.ProductStatusActive, models.ProductStatusSold); err != nil {
		return nil, nil, err
	}

	hold := &outbidBidder{UserID: winningBid.UserID, Amount: winningBid.Amount}
	if buyerWallet, err := s.store.GetWalletByUser(ctx, winningBid.UserID); err == nil {
		hold.WalletID = buyerWallet.ID
	}

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"order_id":   order.ID,
		"winner_id":  winningBid.UserID,
		"amount":     winningBid.Amount,
	}).Info("auction closed with winning bid")

	return order, hold, nil
}

// RunAuctionSweeper drives CloseDueAuctions on a ticker until the
// context ends.
func (s *BiddingService) RunAuctionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("auction sweeper stopped")
			return
		case <-ticker.C:
			s.CloseDueAuctions(ctx)
		}
	}
}
