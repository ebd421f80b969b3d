package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/services"

	_ "wallet-escrow-service/docs"

	"github.com/go-playground/validator"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Wallet struct {
	walletService *services.WalletService
	validate      *validator.Validate
}

func NewWallet(mux *http.ServeMux, walletService *services.WalletService, auth *Auth, idem *Idempotent) *Wallet {
	h := &Wallet{
		walletService: walletService,
		validate:      validator.New(),
	}

	mux.HandleFunc("POST /api/v1/wallets", auth.Require(h.createWallet))
	mux.HandleFunc("GET /api/v1/wallets/balance", auth.Require(h.getBalance))
	mux.HandleFunc("POST /api/v1/wallets/deposit", auth.Require(idem.Wrap(h.deposit)))
	mux.HandleFunc("POST /api/v1/wallets/withdraw", auth.Require(idem.Wrap(h.withdraw)))
	mux.HandleFunc("GET /api/v1/wallets/transactions", auth.Require(h.listTransactions))
	mux.HandleFunc("GET /api/v1/notifications", auth.Require(h.listNotifications))
	mux.HandleFunc("GET /api/v1/admin/reports/wallets", auth.RequireAdmin(h.walletReports))

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return h
}

// @Summary Create a wallet
// @Description Creates a zero-balance wallet for the authenticated user
// @Tags wallets
// @Accept json
// @Produce json
// @Success 201 {object} models.WalletCreateResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /wallets [post]
func (h *Wallet) createWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)

	wallet, err := h.walletService.CreateWallet(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.WalletCreateResponse{
		WalletID: wallet.ID,
		Balance:  0,
		Status:   "created",
		Message:  "Wallet created",
	})
}

// @Summary Get wallet balance
// @Description Returns total, locked and available balance for the authenticated user's wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Success 200 {object} models.BalanceResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /wallets/balance [get]
func (h *Wallet) getBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	balance, err := h.walletService.GetBalance(ctx, userIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// @Summary Deposit funds
// @Description Credits the wallet with an externally confirmed payment. Amount is a decimal string, e.g. "150.00"
// @Tags wallets
// @Accept json
// @Produce json
// @Param deposit body models.DepositRequest true "Deposit Request"
// @Param Idempotency-Key header string false "Idempotency key for safe retries"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /wallets/deposit [post]
func (h *Wallet) deposit(w http.ResponseWriter, r *http.Request) {
	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	txn, err := h.walletService.Deposit(ctx, userIDFromContext(ctx), req.Amount, req.PaymentRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, txn)
}

// @Summary Withdraw funds
// @Description Debits available funds. Funds under active holds cannot be withdrawn
// @Tags wallets
// @Accept json
// @Produce json
// @Param withdraw body models.WithdrawRequest true "Withdraw Request"
// @Param Idempotency-Key header string false "Idempotency key for safe retries"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /wallets/withdraw [post]
func (h *Wallet) withdraw(w http.ResponseWriter, r *http.Request) {
	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	txn, err := h.walletService.Withdraw(ctx, userIDFromContext(ctx), req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, txn)
}

// @Summary List wallet transactions
// @Description Returns a page of the wallet's ledger, newest first
// @Tags wallets
// @Accept json
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Param pageSize query int false "Page size, max 100"
// @Param type query string false "Transaction type filter"
// @Param status query string false "Transaction status filter"
// @Success 200 {object} models.TransactionListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /wallets/transactions [get]
func (h *Wallet) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", queryInt(r, "pageSize", 20))
	typeFilter := models.TransactionType(r.URL.Query().Get("type"))
	statusFilter := models.TransactionStatus(r.URL.Query().Get("status"))

	history, err := h.walletService.History(ctx, userIDFromContext(ctx), page, pageSize, typeFilter, statusFilter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// @Summary List notifications
// @Description Returns the user's stored notifications, newest first
// @Tags notifications
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of notifications"
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *Wallet) listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryInt(r, "limit", 50)

	notifications, err := h.walletService.Notifications(ctx, userIDFromContext(ctx), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// @Summary Wallet activity report
// @Description Aggregates completed transaction volume per wallet and type
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {array} models.WalletReport
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/reports/wallets [get]
func (h *Wallet) walletReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.walletService.Reports(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
