package services

import (
	"context"
	"fmt"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/postgresrepo"

	"github.com/sirupsen/logrus"
)

// EscrowService owns the hold state machine: ACTIVE -> RELEASED (funds
// back to available) or ACTIVE -> FORFEITED (reservation becomes a real
// debit). Placing a hold never changes the total balance, only the
// locked portion. Every operation composes into a caller-owned SQL
// transaction; the bidding and settlement coordinators decide the
// atomic unit.
type EscrowService struct {
	balances *BalanceService
}

func NewEscrowService(balances *BalanceService) *EscrowService {
	return &EscrowService{balances: balances}
}

// holdTransactionType maps a hold reason to its ledger marker type.
func holdTransactionType(reason models.HoldReason) models.TransactionType {
	if reason == models.HoldReasonBid {
		return models.TransactionTypeAuctionHold
	}
	return models.TransactionTypeEscrowHold
}

func releaseTransactionType(reason models.HoldReason) models.TransactionType {
	if reason == models.HoldReasonBid {
		return models.TransactionTypeAuctionRel
	}
	return models.TransactionTypeEscrowRelease
}

// PlaceHoldInTx reserves amount against the wallet's available balance.
// It takes the wallet row lock, recomputes the projection under it, and
// admits or rejects. A rejection leaves no rows behind (the caller
// rolls back).
func (s *EscrowService) PlaceHoldInTx(
	ctx context.Context,
	tx ledgerTx,
	walletID string,
	amount int64,
	reason models.HoldReason,
	referenceID string,
) (*models.Hold, error) {
	if _, err := tx.LockWallet(ctx, walletID); err != nil {
		return nil, err
	}

	balance, err := s.balances.BalanceInTx(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}
	if amount > balance.AvailableBalance {
		return nil, ErrInsufficientFunds
	}

	hold, err := tx.CreateHold(ctx, walletID, amount, reason, referenceID)
	if err != nil {
		return nil, err
	}

	_, err = tx.AppendTransaction(ctx, walletID, holdTransactionType(reason), -amount,
		models.TransactionStatusPending,
		fmt.Sprintf("funds reserved (%s)", reason), &referenceID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"hold_id":   hold.ID,
		"amount":    amount,
		"reason":    reason,
		"reference": referenceID,
	}).Info("hold placed")

	return hold, nil
}

// ReleaseHoldInTx resolves a hold to RELEASED. The paired PENDING hold
// marker completes together with an equal opposite release entry, so
// the replayed balance does not move. Releasing an already-released
// hold is a no-op so retries are harmless.
func (s *EscrowService) ReleaseHoldInTx(ctx context.Context, tx ledgerTx, holdID string) error {
	hold, err := tx.LockHold(ctx, holdID)
	if err != nil {
		return err
	}

	switch hold.Status {
	case models.HoldStatusReleased:
		return nil // no-op on retry
	case models.HoldStatusForfeited:
		return postgresrepo.ErrStatusConflict
	}

	if _, err := tx.LockWallet(ctx, hold.WalletID); err != nil {
		return err
	}

	if err := tx.ResolveHold(ctx, hold.ID, models.HoldStatusReleased); err != nil {
		return err
	}

	holdTxn, err := tx.HoldTransaction(ctx, hold.WalletID, hold.ReferenceID)
	if err != nil {
		return err
	}
	if err := tx.MarkTransactionStatus(ctx, holdTxn.ID,
		models.TransactionStatusPending, models.TransactionStatusCompleted); err != nil {
		return err
	}

	_, err = tx.AppendTransaction(ctx, hold.WalletID, releaseTransactionType(hold.Reason),
		hold.Amount, models.TransactionStatusCompleted,
		fmt.Sprintf("reservation released (%s)", hold.Reason), &hold.ReferenceID)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"wallet_id": hold.WalletID,
		"hold_id":   hold.ID,
		"amount":    hold.Amount,
		"reference": hold.ReferenceID,
	}).Info("hold released")

	return nil
}

// ForfeitHoldInTx resolves a hold to FORFEITED and converts the
// reserved amount into a completed PURCHASE debit. The PENDING hold
// marker is cancelled; the purchase entry is the real money movement,
// correlated by reference.
func (s *EscrowService) ForfeitHoldInTx(
	ctx context.Context,
	tx ledgerTx,
	holdID string,
	reference string,
	description string,
) (*models.Transaction, error) {
	hold, err := tx.LockHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.Status != models.HoldStatusActive {
		return nil, postgresrepo.ErrStatusConflict
	}

	if _, err := tx.LockWallet(ctx, hold.WalletID); err != nil {
		return nil, err
	}

	if err := tx.ResolveHold(ctx, hold.ID, models.HoldStatusForfeited); err != nil {
		return nil, err
	}

	holdTxn, err := tx.HoldTransaction(ctx, hold.WalletID, hold.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := tx.MarkTransactionStatus(ctx, holdTxn.ID,
		models.TransactionStatusPending, models.TransactionStatusCancelled); err != nil {
		return nil, err
	}

	purchase, err := tx.AppendTransaction(ctx, hold.WalletID, models.TransactionTypePurchase,
		-hold.Amount, models.TransactionStatusCompleted, description, &reference)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"wallet_id": hold.WalletID,
		"hold_id":   hold.ID,
		"amount":    hold.Amount,
		"reference": reference,
	}).Info("hold forfeited")

	return purchase, nil
}

// MoveHoldInTx is the outbid transfer: the new bidder's hold is placed
// first and only then is the previous bidder's hold released, both
// inside the caller's transaction. There is never a committed state
// where the old funds are unlocked without the new hold existing.
func (s *EscrowService) MoveHoldInTx(
	ctx context.Context,
	tx ledgerTx,
	oldHoldID string,
	newWalletID string,
	newAmount int64,
	referenceID string,
) (*models.Hold, error) {
	oldHold, err := tx.LockHold(ctx, oldHoldID)
	if err != nil {
		return nil, err
	}

	// Row locks in lexicographic order, matching every other multi-wallet path.
	if _, err := tx.LockWallets(ctx, oldHold.WalletID, newWalletID); err != nil {
		return nil, err
	}

	hold, err := s.PlaceHoldInTx(ctx, tx, newWalletID, newAmount, oldHold.Reason, referenceID)
	if err != nil {
		return nil, err
	}

	if err := s.ReleaseHoldInTx(ctx, tx, oldHoldID); err != nil {
		return nil, err
	}

	return hold, nil
}
