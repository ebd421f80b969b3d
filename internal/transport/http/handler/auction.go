package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"wallet-escrow-service/internal/models"
	"wallet-escrow-service/internal/money"
	"wallet-escrow-service/internal/services"

	"github.com/go-playground/validator"
)

type Auction struct {
	biddingService    *services.BiddingService
	settlementService *services.SettlementService
	validate          *validator.Validate
}

func NewAuction(
	mux *http.ServeMux,
	biddingService *services.BiddingService,
	settlementService *services.SettlementService,
	auth *Auth,
	idem *Idempotent,
) *Auction {
	h := &Auction{
		biddingService:    biddingService,
		settlementService: settlementService,
		validate:          validator.New(),
	}

	mux.HandleFunc("POST /api/v1/products/{productId}/bids", auth.Require(idem.Wrap(h.placeBid)))
	mux.HandleFunc("POST /api/v1/products/{productId}/buy", auth.Require(idem.Wrap(h.buyNow)))
	mux.HandleFunc("POST /api/v1/orders/{orderId}/cancel", auth.Require(idem.Wrap(h.cancelOrder)))

	return h
}

// @Summary Place a bid
// @Description Places a bid on an active auction, reserving the bid amount from the bidder's wallet. Amount is a decimal string, e.g. "150.00"
// @Tags auctions
// @Accept json
// @Produce json
// @Param productId path string true "Product ID (UUIDv4)"
// @Param bid body models.PlaceBidRequest true "Bid Request"
// @Param Idempotency-Key header string false "Idempotency key for safe retries"
// @Success 200 {object} models.BidResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /products/{productId}/bids [post]
func (h *Auction) placeBid(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if err := h.validate.Var(productID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req models.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	amount, err := money.ParseMinorUnits(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ctx := r.Context()
	bid, err := h.biddingService.PlaceBid(ctx, productID, userIDFromContext(ctx), amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bid)
}

// @Summary Buy now
// @Description Buys the product at its buy-now price, settling immediately
// @Tags auctions
// @Accept json
// @Produce json
// @Param productId path string true "Product ID (UUIDv4)"
// @Param Idempotency-Key header string false "Idempotency key for safe retries"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /products/{productId}/buy [post]
func (h *Auction) buyNow(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if err := h.validate.Var(productID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	ctx := r.Context()
	order, err := h.settlementService.SettleBuyNow(ctx, userIDFromContext(ctx), productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OrderResponse{
		Order:  *order,
		Status: "settled",
	})
}

// @Summary Cancel an order
// @Description Cancels a pending or confirmed order and reverses its settlement
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID (UUIDv4)"
// @Param Idempotency-Key header string false "Idempotency key for safe retries"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /orders/{orderId}/cancel [post]
func (h *Auction) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if err := h.validate.Var(orderID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	ctx := r.Context()
	order, err := h.settlementService.CancelOrder(ctx, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OrderResponse{
		Order:  *order,
		Status: "cancelled",
	})
}
