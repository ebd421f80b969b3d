package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/money"
	"wallet-escrow-service/internal/repositories/postgresrepo"
	"wallet-escrow-service/internal/repositories/redisrepo"
	"wallet-escrow-service/internal/services"

	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(statusCode),
		"message": message,
		"code":    statusCode,
	}
	writeJSON(w, statusCode, errorResponse)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Unrecognized errors become an opaque 500; their detail goes to the log,
// not the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, postgresrepo.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "Insufficient available balance")
	case errors.Is(err, postgresrepo.ErrWalletNotFound),
		errors.Is(err, postgresrepo.ErrProductNotFound),
		errors.Is(err, postgresrepo.ErrOrderNotFound),
		errors.Is(err, postgresrepo.ErrTransactionNotFound),
		errors.Is(err, postgresrepo.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, postgresrepo.ErrWalletExists):
		writeError(w, http.StatusConflict, "Wallet already exists for this user")
	case errors.Is(err, services.ErrAuctionNotActive),
		errors.Is(err, services.ErrBidTooLow),
		errors.Is(err, services.ErrSelfBid),
		errors.Is(err, services.ErrOrderNotCancelable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, postgresrepo.ErrStatusConflict):
		writeError(w, http.StatusConflict, "Resource was modified concurrently, retry the request")
	case errors.Is(err, locks.ErrBusy),
		errors.Is(err, redisrepo.ErrIdempotencyInFlight):
		writeError(w, http.StatusTooManyRequests, "Resource is busy, retry later")
	case errors.Is(err, services.ErrSettlementPartial):
		// The message carries the incident id the support team needs to
		// find the reconciliation record.
		logrus.WithError(err).Error("settlement incident surfaced to client")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		logrus.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
