package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-escrow-service/internal/config"
	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/kafkarepo"
	"wallet-escrow-service/internal/repositories/postgresrepo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// incidentRecorder persists settlement incidents on its own connection,
// outside the transaction that detected the violation.
type incidentRecorder interface {
	RecordSettlementIncident(ctx context.Context, incident models.SettlementIncident) error
}

// SettlementService converts reservations into completed payments: the
// buyer's PURCHASE debit, the seller's SELLER_PAYOUT credit and the
// PLATFORM_FEE credit are one atomic unit. A buyer charged without the
// seller paid is the one state this coordinator exists to prevent.
type SettlementService struct {
	store       *postgresrepo.Store
	balances    *BalanceService
	escrow      *EscrowService
	events      *kafkarepo.EventRepository
	walletLocks *locks.KeyedMutex
	incidents   incidentRecorder
	fees        config.FeesConfig
}

func NewSettlementService(
	store *postgresrepo.Store,
	balances *BalanceService,
	escrow *EscrowService,
	events *kafkarepo.EventRepository,
	walletLocks *locks.KeyedMutex,
	fees config.FeesConfig,
) *SettlementService {
	return &SettlementService{
		store:       store,
		balances:    balances,
		escrow:      escrow,
		events:      events,
		walletLocks: walletLocks,
		incidents:   store,
		fees:        fees,
	}
}

// SplitSettlement computes the three legs of a settlement. The fee
// rounds down; the remainder stays in the seller payout, so the legs
// always sum to zero.
func SplitSettlement(totalAmount, feeBps int64) (purchase, payout, fee int64) {
	fee = totalAmount * feeBps / 10000
	payout = totalAmount - fee
	return -totalAmount, payout, fee
}

// SettleBuyNow handles a direct purchase: reserve the full price on the
// buyer, then immediately forfeit the reservation into the settlement
// triple. The product is sold and the order confirmed in the same unit.
// A standing winning bid is resolved in that unit too: its hold is
// released and the bid demoted, so the outbid bidder's funds come back
// the moment the sale commits.
func (s *SettlementService) SettleBuyNow(ctx context.Context, buyerUserID, productID string) (*models.Order, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductStatusActive || product.BuyNowPrice == nil {
		return nil, ErrAuctionNotActive
	}
	if buyerUserID == product.SellerID {
		return nil, ErrSelfBid
	}

	buyerWallet, err := s.store.GetWalletByUser(ctx, buyerUserID)
	if err != nil {
		return nil, err
	}
	sellerWallet, err := s.store.GetWalletByUser(ctx, product.SellerID)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.store.GetWalletByUser(ctx, s.fees.PlatformAccountUserID)
	if err != nil {
		return nil, fmt.Errorf("platform account wallet: %w", err)
	}

	if err := s.walletLocks.AcquireMany(ctx, buyerWallet.ID, sellerWallet.ID, platformWallet.ID); err != nil {
		return nil, err
	}
	defer s.walletLocks.ReleaseMany(buyerWallet.ID, sellerWallet.ID, platformWallet.ID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	order, displaced, err := s.settleBuyNowInTx(ctx, tx, product, buyerWallet, sellerWallet, platformWallet)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("settle error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	invalidate := []string{buyerWallet.ID, sellerWallet.ID, platformWallet.ID}
	if displaced != nil {
		invalidate = append(invalidate, displaced.WalletID)
	}
	s.balances.Invalidate(ctx, invalidate...)

	s.publishSettled(ctx, order, buyerWallet.ID)
	if displaced != nil {
		s.publishOutbidByBuyNow(ctx, order, displaced)
	}

	return order, nil
}

func (s *SettlementService) settleBuyNowInTx(
	ctx context.Context,
	tx ledgerTx,
	product *models.Product,
	buyerWallet, sellerWallet, platformWallet *models.Wallet,
) (*models.Order, *outbidBidder, error) {
	locked, err := tx.LockProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, err
	}
	if locked.Status != models.ProductStatusActive || locked.BuyNowPrice == nil {
		return nil, nil, ErrAuctionNotActive
	}
	total := *locked.BuyNowPrice

	prevBid, err := tx.WinningBid(ctx, locked.ID)
	if err != nil {
		return nil, nil, err
	}
	var prevHold *models.Hold
	if prevBid != nil {
		prevHold, err = tx.ActiveHoldByReference(ctx, prevBid.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	lockIDs := []string{buyerWallet.ID, sellerWallet.ID, platformWallet.ID}
	if prevHold != nil {
		lockIDs = append(lockIDs, prevHold.WalletID)
	}
	if _, err := tx.LockWallets(ctx, lockIDs...); err != nil {
		return nil, nil, err
	}

	// Resolve the standing winning bid before admitting the buyer's
	// hold. The release is ordered first so a top bidder buying the
	// item outright can settle from the funds their bid had reserved.
	var displaced *outbidBidder
	if prevHold != nil {
		if err := s.escrow.ReleaseHoldInTx(ctx, tx, prevHold.ID); err != nil {
			return nil, nil, err
		}
		if err := tx.ClearWinningBid(ctx, locked.ID); err != nil {
			return nil, nil, err
		}
		displaced = &outbidBidder{
			WalletID: prevHold.WalletID,
			UserID:   prevBid.UserID,
			Amount:   prevBid.Amount,
		}
	}

	order, err := tx.CreateOrder(ctx, buyerWallet.UserID, locked.SellerID, locked.ID, total)
	if err != nil {
		return nil, nil, err
	}

	hold, err := s.escrow.PlaceHoldInTx(ctx, tx, buyerWallet.ID, total, models.HoldReasonOrderEscrow, order.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.settleFromHoldInTx(ctx, tx, order, hold.ID, sellerWallet, platformWallet); err != nil {
		return nil, nil, err
	}

	if err := tx.SetProductStatus(ctx, locked.ID, models.ProductStatusActive, models.ProductStatusSold); err != nil {
		return nil, nil, err
	}

	order.Status = models.OrderStatusConfirmed
	return order, displaced, nil
}

// SettleAuctionWinInTx settles a closed auction inside the caller's
// transaction: the winning bid's existing hold is forfeited, so no new
// admission check is needed; the funds are already reserved.
func (s *SettlementService) SettleAuctionWinInTx(
	ctx context.Context,
	tx ledgerTx,
	product *models.Product,
	winningBid *models.Bid,
) (*models.Order, error) {
	sellerWallet, err := s.store.GetWalletByUser(ctx, product.SellerID)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.store.GetWalletByUser(ctx, s.fees.PlatformAccountUserID)
	if err != nil {
		return nil, fmt.Errorf("platform account wallet: %w", err)
	}

	hold, err := tx.ActiveHoldByReference(ctx, winningBid.ID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.LockWallets(ctx, hold.WalletID, sellerWallet.ID, platformWallet.ID); err != nil {
		return nil, err
	}

	order, err := tx.CreateOrder(ctx, winningBid.UserID, product.SellerID, product.ID, winningBid.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.settleFromHoldInTx(ctx, tx, order, hold.ID, sellerWallet, platformWallet); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusConfirmed
	return order, nil
}

// settleFromHoldInTx writes the settlement triple. All three legs are
// appended in one SQL transaction and cross-checked before the caller
// commits; a mismatch aborts the unit and records an incident that
// survives the rollback.
func (s *SettlementService) settleFromHoldInTx(
	ctx context.Context,
	tx ledgerTx,
	order *models.Order,
	holdID string,
	sellerWallet, platformWallet *models.Wallet,
) error {
	purchase, err := s.escrow.ForfeitHoldInTx(ctx, tx, holdID, order.ID,
		fmt.Sprintf("purchase of product %s", order.ProductID))
	if err != nil {
		return err
	}

	_, payout, fee := SplitSettlement(order.TotalAmount, s.fees.PlatformFeeBps)

	payoutTxn, err := tx.AppendTransaction(ctx, sellerWallet.ID, models.TransactionTypeSellerPayout,
		payout, models.TransactionStatusCompleted,
		fmt.Sprintf("payout for product %s", order.ProductID), &order.ID)
	if err != nil {
		return err
	}

	var feeAmount int64
	if fee > 0 {
		feeTxn, err := tx.AppendTransaction(ctx, platformWallet.ID, models.TransactionTypePlatformFee,
			fee, models.TransactionStatusCompleted,
			fmt.Sprintf("platform fee for order %s", order.ID), &order.ID)
		if err != nil {
			return err
		}
		feeAmount = feeTxn.Amount
	}

	// The three legs must cancel out exactly. Anything else means the
	// settlement is half-applied and must never become visible.
	if purchase.Amount+payoutTxn.Amount+feeAmount != 0 {
		incidentID := uuid.New().String()
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"incident": incidentID,
			"purchase": purchase.Amount,
			"payout":   payoutTxn.Amount,
			"fee":      feeAmount,
		}).Error("settlement legs do not balance, recording incident")
		s.recordIncident(models.SettlementIncident{
			ID:             incidentID,
			OrderID:        order.ID,
			ProductID:      order.ProductID,
			BuyerID:        order.BuyerID,
			SellerID:       order.SellerID,
			PurchaseAmount: purchase.Amount,
			PayoutAmount:   payoutTxn.Amount,
			FeeAmount:      feeAmount,
		})
		return fmt.Errorf("%w: incident %s", ErrSettlementPartial, incidentID)
	}

	if err := tx.SetOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"buyer_id":  order.BuyerID,
		"seller_id": order.SellerID,
		"total":     order.TotalAmount,
		"fee":       feeAmount,
	}).Info("order settled")

	return nil
}

// CancelOrder reverses a settlement before shipment: REFUND entries
// undo each completed leg and any still-active escrow hold is released.
func (s *SettlementService) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		return nil, ErrOrderNotCancelable
	}

	buyerWallet, err := s.store.GetWalletByUser(ctx, order.BuyerID)
	if err != nil {
		return nil, err
	}
	sellerWallet, err := s.store.GetWalletByUser(ctx, order.SellerID)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.store.GetWalletByUser(ctx, s.fees.PlatformAccountUserID)
	if err != nil {
		return nil, fmt.Errorf("platform account wallet: %w", err)
	}

	if err := s.walletLocks.AcquireMany(ctx, buyerWallet.ID, sellerWallet.ID, platformWallet.ID); err != nil {
		return nil, err
	}
	defer s.walletLocks.ReleaseMany(buyerWallet.ID, sellerWallet.ID, platformWallet.ID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.cancelOrderInTx(ctx, tx, orderID, buyerWallet, sellerWallet, platformWallet)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("cancel error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.balances.Invalidate(ctx, buyerWallet.ID, sellerWallet.ID, platformWallet.ID)
	s.publishRefunded(ctx, cancelled, buyerWallet.ID)

	return cancelled, nil
}

func (s *SettlementService) cancelOrderInTx(
	ctx context.Context,
	tx ledgerTx,
	orderID string,
	buyerWallet, sellerWallet, platformWallet *models.Wallet,
) (*models.Order, error) {
	order, err := tx.LockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		return nil, ErrOrderNotCancelable
	}

	if _, err := tx.LockWallets(ctx, buyerWallet.ID, sellerWallet.ID, platformWallet.ID); err != nil {
		return nil, err
	}

	// Release the escrow hold if the order never settled.
	if hold, err := tx.ActiveHoldByReference(ctx, order.ID); err == nil {
		if err := s.escrow.ReleaseHoldInTx(ctx, tx, hold.ID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, postgresrepo.ErrHoldNotFound) {
		return nil, err
	}

	settled, err := tx.CompletedTransactionsByReference(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	reversed := false
	for _, txn := range settled {
		switch txn.Type {
		case models.TransactionTypePurchase, models.TransactionTypeSellerPayout, models.TransactionTypePlatformFee:
		default:
			continue
		}

		// Clawing back a credit needs the funds to still be available.
		if txn.Amount > 0 {
			balance, err := s.balances.BalanceInTx(ctx, tx, txn.WalletID)
			if err != nil {
				return nil, err
			}
			if balance.AvailableBalance < txn.Amount {
				return nil, ErrInsufficientFunds
			}
		}

		_, err := tx.AppendTransaction(ctx, txn.WalletID, models.TransactionTypeRefund,
			-txn.Amount, models.TransactionStatusCompleted,
			fmt.Sprintf("refund for order %s", order.ID), &order.ID)
		if err != nil {
			return nil, err
		}
		reversed = true
	}

	target := models.OrderStatusCancelled
	if reversed {
		target = models.OrderStatusRefunded
	}
	if err := tx.SetOrderStatus(ctx, order.ID, order.Status, target); err != nil {
		return nil, err
	}
	order.Status = target

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"reversed": reversed,
	}).Info("order cancelled")

	return order, nil
}

// recordIncident runs on its own connection: the settlement transaction
// that detected the violation is about to roll back, taking the order
// row with it, and the reconciliation record must survive both.
func (s *SettlementService) recordIncident(incident models.SettlementIncident) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.incidents.RecordSettlementIncident(ctx, incident); err != nil {
		logrus.WithError(err).WithField("incident", incident.ID).
			Error("failed to record settlement incident")
	}
}

func (s *SettlementService) publishSettled(ctx context.Context, order *models.Order, buyerWalletID string) {
	err := s.events.Publish(ctx, models.WalletEvent{
		EventID:    uuid.New().String(),
		Kind:       models.EventOrderSettled,
		WalletID:   buyerWalletID,
		UserID:     order.BuyerID,
		ProductID:  order.ProductID,
		OrderID:    order.ID,
		Amount:     order.TotalAmount,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Warn("failed to publish order settled event")
	}
}

func (s *SettlementService) publishOutbidByBuyNow(ctx context.Context, order *models.Order, displaced *outbidBidder) {
	err := s.events.Publish(ctx, models.WalletEvent{
		EventID:    uuid.New().String(),
		Kind:       models.EventBidOutbid,
		WalletID:   displaced.WalletID,
		UserID:     displaced.UserID,
		ProductID:  order.ProductID,
		Amount:     order.TotalAmount,
		PrevAmount: displaced.Amount,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Warn("failed to publish outbid event")
	}
}

func (s *SettlementService) publishRefunded(ctx context.Context, order *models.Order, buyerWalletID string) {
	err := s.events.Publish(ctx, models.WalletEvent{
		EventID:    uuid.New().String(),
		Kind:       models.EventOrderRefunded,
		WalletID:   buyerWalletID,
		UserID:     order.BuyerID,
		ProductID:  order.ProductID,
		OrderID:    order.ID,
		Amount:     order.TotalAmount,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Warn("failed to publish order refunded event")
	}
}
