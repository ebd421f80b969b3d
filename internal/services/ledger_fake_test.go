package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/repositories/postgresrepo"
)

// fakeLedger is an in-memory ledgerTx. It mirrors the SQL semantics the
// repositories implement (status guards, reference lookups, sum
// queries) so the escrow and settlement arithmetic can be exercised
// without a database. Locking methods only validate existence; the
// fake is single-goroutine.
type fakeLedger struct {
	seq          int
	wallets      map[string]*models.Wallet
	products     map[string]*models.Product
	holds        map[string]*models.Hold
	bids         []*models.Bid
	orders       map[string]*models.Order
	transactions []*models.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		wallets:  make(map[string]*models.Wallet),
		products: make(map[string]*models.Product),
		holds:    make(map[string]*models.Hold),
		orders:   make(map[string]*models.Order),
	}
}

func (f *fakeLedger) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// addWallet seeds a wallet with a completed deposit.
func (f *fakeLedger) addWallet(walletID, userID string, funds int64) {
	f.wallets[walletID] = &models.Wallet{ID: walletID, UserID: userID}
	if funds != 0 {
		f.transactions = append(f.transactions, &models.Transaction{
			ID:       f.nextID("txn"),
			WalletID: walletID,
			Type:     models.TransactionTypeDeposit,
			Amount:   funds,
			Status:   models.TransactionStatusCompleted,
		})
	}
}

func (f *fakeLedger) addProduct(p *models.Product) {
	f.products[p.ID] = p
}

func (f *fakeLedger) activeHolds(walletID string) []*models.Hold {
	var active []*models.Hold
	for _, h := range f.holds {
		if h.WalletID == walletID && h.Status == models.HoldStatusActive {
			active = append(active, h)
		}
	}
	return active
}

func (f *fakeLedger) transactionCount() int { return len(f.transactions) }

func (f *fakeLedger) LockWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	w, ok := f.wallets[walletID]
	if !ok {
		return nil, postgresrepo.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (f *fakeLedger) LockWallets(ctx context.Context, walletIDs ...string) (map[string]*models.Wallet, error) {
	ids := append([]string(nil), walletIDs...)
	sort.Strings(ids)
	wallets := make(map[string]*models.Wallet, len(ids))
	for _, id := range ids {
		w, err := f.LockWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		wallets[id] = w
	}
	return wallets, nil
}

func (f *fakeLedger) SumCompleted(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	for _, txn := range f.transactions {
		if txn.WalletID == walletID && txn.Status == models.TransactionStatusCompleted {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedger) SumActiveHolds(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	for _, h := range f.activeHolds(walletID) {
		sum += h.Amount
	}
	return sum, nil
}

func (f *fakeLedger) AppendTransaction(
	ctx context.Context,
	walletID string,
	txType models.TransactionType,
	amount int64,
	status models.TransactionStatus,
	description string,
	reference *string,
) (*models.Transaction, error) {
	if amount == 0 {
		return nil, postgresrepo.ErrInvalidAmount
	}
	txn := &models.Transaction{
		ID:          f.nextID("txn"),
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		Status:      status,
		Description: description,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}
	f.transactions = append(f.transactions, txn)
	copied := *txn
	return &copied, nil
}

func (f *fakeLedger) MarkTransactionStatus(ctx context.Context, transactionID string, from, to models.TransactionStatus) error {
	for _, txn := range f.transactions {
		if txn.ID == transactionID {
			if txn.Status != from {
				return postgresrepo.ErrStatusConflict
			}
			txn.Status = to
			return nil
		}
	}
	return postgresrepo.ErrStatusConflict
}

func (f *fakeLedger) CreateHold(ctx context.Context, walletID string, amount int64, reason models.HoldReason, referenceID string) (*models.Hold, error) {
	if amount <= 0 {
		return nil, postgresrepo.ErrInvalidAmount
	}
	hold := &models.Hold{
		ID:          f.nextID("hold"),
		WalletID:    walletID,
		Amount:      amount,
		Reason:      reason,
		ReferenceID: referenceID,
		Status:      models.HoldStatusActive,
	}
	f.holds[hold.ID] = hold
	copied := *hold
	return &copied, nil
}

func (f *fakeLedger) LockHold(ctx context.Context, holdID string) (*models.Hold, error) {
	h, ok := f.holds[holdID]
	if !ok {
		return nil, postgresrepo.ErrHoldNotFound
	}
	copied := *h
	return &copied, nil
}

func (f *fakeLedger) ResolveHold(ctx context.Context, holdID string, to models.HoldStatus) error {
	h, ok := f.holds[holdID]
	if !ok || h.Status != models.HoldStatusActive {
		return postgresrepo.ErrStatusConflict
	}
	h.Status = to
	return nil
}

func (f *fakeLedger) ActiveHoldByReference(ctx context.Context, referenceID string) (*models.Hold, error) {
	for _, h := range f.holds {
		if h.ReferenceID == referenceID && h.Status == models.HoldStatusActive {
			copied := *h
			return &copied, nil
		}
	}
	return nil, postgresrepo.ErrHoldNotFound
}

func (f *fakeLedger) HoldTransaction(ctx context.Context, walletID, referenceID string) (*models.Transaction, error) {
	for i := len(f.transactions) - 1; i >= 0; i-- {
		txn := f.transactions[i]
		if txn.WalletID != walletID || txn.Status != models.TransactionStatusPending {
			continue
		}
		if txn.Reference == nil || *txn.Reference != referenceID {
			continue
		}
		if txn.Type == models.TransactionTypeAuctionHold || txn.Type == models.TransactionTypeEscrowHold {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, postgresrepo.ErrTransactionNotFound
}

func (f *fakeLedger) LockProduct(ctx context.Context, productID string) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, postgresrepo.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeLedger) WinningBid(ctx context.Context, productID string) (*models.Bid, error) {
	for _, b := range f.bids {
		if b.ProductID == productID && b.IsWinning {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) InsertWinningBid(ctx context.Context, bidID, productID, userID string, amount int64) (*models.Bid, error) {
	for _, b := range f.bids {
		if b.ProductID == productID {
			b.IsWinning = false
		}
	}
	bid := &models.Bid{
		ID:        bidID,
		ProductID: productID,
		UserID:    userID,
		Amount:    amount,
		IsWinning: true,
		CreatedAt: time.Now(),
	}
	f.bids = append(f.bids, bid)
	copied := *bid
	return &copied, nil
}

func (f *fakeLedger) ClearWinningBid(ctx context.Context, productID string) error {
	for _, b := range f.bids {
		if b.ProductID == productID {
			b.IsWinning = false
		}
	}
	return nil
}

func (f *fakeLedger) SetCurrentBid(ctx context.Context, productID string, amount int64) error {
	p, ok := f.products[productID]
	if !ok {
		return postgresrepo.ErrProductNotFound
	}
	p.CurrentBid = &amount
	return nil
}

func (f *fakeLedger) SetProductStatus(ctx context.Context, productID string, from, to models.ProductStatus) error {
	p, ok := f.products[productID]
	if !ok || p.Status != from {
		return postgresrepo.ErrStatusConflict
	}
	p.Status = to
	return nil
}

func (f *fakeLedger) CreateOrder(ctx context.Context, buyerID, sellerID, productID string, totalAmount int64) (*models.Order, error) {
	if totalAmount <= 0 {
		return nil, postgresrepo.ErrInvalidAmount
	}
	order := &models.Order{
		ID:          f.nextID("order"),
		BuyerID:     buyerID,
		SellerID:    sellerID,
		ProductID:   productID,
		TotalAmount: totalAmount,
		Status:      models.OrderStatusPending,
	}
	f.orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (f *fakeLedger) LockOrder(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, postgresrepo.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeLedger) SetOrderStatus(ctx context.Context, orderID string, from, to models.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return postgresrepo.ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (f *fakeLedger) CompletedTransactionsByReference(ctx context.Context, reference string) ([]models.Transaction, error) {
	var matched []models.Transaction
	for _, txn := range f.transactions {
		if txn.Status != models.TransactionStatusCompleted {
			continue
		}
		if txn.Reference != nil && *txn.Reference == reference {
			matched = append(matched, *txn)
		}
	}
	return matched, nil
}
