package services

import (
	"context"
	"fmt"
	"time"

	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/money"
	"wallet-escrow-service/internal/repositories/kafkarepo"
	"wallet-escrow-service/internal/repositories/postgresrepo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WalletService is the facade the transport layer talks to. It owns
// wallet creation, deposits, withdrawals and history; escrow and
// settlement flows live in their own services.
type WalletService struct {
	store       *postgresrepo.Store
	balances    *BalanceService
	events      *kafkarepo.EventRepository
	walletLocks *locks.KeyedMutex
}

func NewWalletService(
	store *postgresrepo.Store,
	balances *BalanceService,
	events *kafkarepo.EventRepository,
	walletLocks *locks.KeyedMutex,
) *WalletService {
	return &WalletService{
		store:       store,
		balances:    balances,
		events:      events,
		walletLocks: walletLocks,
	}
}

// CreateWallet provisions a zero-balance wallet for the user. A second
// call for the same user fails with ErrWalletExists.
func (s *WalletService) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := s.store.CreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"wallet_id": wallet.ID,
		"user_id":   userID,
	}).Info("wallet created")

	return wallet, nil
}

// Deposit credits the wallet with funds from an external payment.
// The amount arrives as a decimal string and is stored in minor units.
func (s *WalletService) Deposit(ctx context.Context, userID, amount, paymentRef string) (*models.Transaction, error) {
	minorUnits, err := money.ParseMinorUnits(amount)
	if err != nil {
		return nil, err
	}

	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.walletLocks.Acquire(ctx, wallet.ID); err != nil {
		return nil, err
	}
	defer s.walletLocks.Release(wallet.ID)

	txn, err := s.appendCompleted(ctx, wallet.ID, models.TransactionTypeDeposit, minorUnits, "wallet deposit", paymentRef)
	if err != nil {
		return nil, err
	}

	s.balances.Invalidate(ctx, wallet.ID)
	s.publish(ctx, models.EventWalletDeposited, wallet.ID, userID, minorUnits)

	logrus.WithFields(logrus.Fields{
		"wallet_id": wallet.ID,
		"amount":    minorUnits,
	}).Info("deposit completed")

	return txn, nil
}

// Withdraw debits available funds. Funds under ACTIVE holds cannot be
// withdrawn.
func (s *WalletService) Withdraw(ctx context.Context, userID, amount string) (*models.Transaction, error) {
	minorUnits, err := money.ParseMinorUnits(amount)
	if err != nil {
		return nil, err
	}

	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.walletLocks.Acquire(ctx, wallet.ID); err != nil {
		return nil, err
	}
	defer s.walletLocks.Release(wallet.ID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.withdrawInTx(ctx, tx, wallet.ID, minorUnits)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("withdraw error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	s.balances.Invalidate(ctx, wallet.ID)
	s.publish(ctx, models.EventWalletWithdrawn, wallet.ID, userID, minorUnits)

	logrus.WithFields(logrus.Fields{
		"wallet_id": wallet.ID,
		"amount":    minorUnits,
	}).Info("withdrawal completed")

	return txn, nil
}

func (s *WalletService) withdrawInTx(ctx context.Context, tx ledgerTx, walletID string, amount int64) (*models.Transaction, error) {
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

	return tx.AppendTransaction(ctx, walletID, models.TransactionTypeWithdrawal, -amount,
		models.TransactionStatusCompleted, "wallet withdrawal", nil)
}

// appendCompleted writes a single completed transaction in its own
// short SQL transaction.
func (s *WalletService) appendCompleted(
	ctx context.Context,
	walletID string,
	txType models.TransactionType,
	amount int64,
	description, reference string,
) (*models.Transaction, error) {
	var ref *string
	if reference != "" {
		ref = &reference
	}
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := tx.LockWallet(ctx, walletID); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("lock error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	txn, err := tx.AppendTransaction(ctx, walletID, txType, amount,
		models.TransactionStatusCompleted, description, ref)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("append error: %w, rollback error: %v", err, rollbackErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// GetBalance returns the wallet projection for the user.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (*models.BalanceResponse, error) {
	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balances.GetBalance(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	return &models.BalanceResponse{
		WalletID: wallet.ID,
		Balance:  balance,
	}, nil
}

// History lists the wallet's transactions newest first, optionally
// filtered by type and status. Unknown filter values are rejected
// rather than silently matching nothing.
func (s *WalletService) History(
	ctx context.Context,
	userID string,
	page, pageSize int,
	typeFilter models.TransactionType,
	statusFilter models.TransactionStatus,
) (*models.TransactionListResponse, error) {
	if typeFilter != "" && !models.ValidTransactionType(typeFilter) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidFilter, typeFilter)
	}
	if statusFilter != "" && !models.ValidTransactionStatus(statusFilter) {
		return nil, fmt.Errorf("%w: unknown transaction status %q", ErrInvalidFilter, statusFilter)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, total, err := s.store.ListTransactions(ctx, wallet.ID, page, pageSize, typeFilter, statusFilter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &models.TransactionListResponse{
		Transactions: transactions,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   totalPages,
	}, nil
}

// Reports aggregates completed transaction volume per wallet and type
// for the admin surface.
func (s *WalletService) Reports(ctx context.Context) ([]models.WalletReport, error) {
	return s.store.WalletReports(ctx)
}

// Notifications lists the user's stored notifications newest first.
func (s *WalletService) Notifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit)
}

func (s *WalletService) publish(ctx context.Context, kind, walletID, userID string, amount int64) {
	event := models.WalletEvent{
		EventID:    uuid.New().String(),
		Kind:       kind,
		WalletID:   walletID,
		UserID:     userID,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("wallet_id", walletID).
			Warn("failed to publish wallet event")
	}
}
