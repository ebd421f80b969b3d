package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/money"
	"wallet-escrow-service/internal/repositories/postgresrepo"
	"wallet-escrow-service/internal/services"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthRequire(t *testing.T) {
	auth := NewAuth(testSecret)

	validToken := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	expiredToken := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	wrongKeyToken := signToken(t, "other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noSubjectToken := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{name: "valid token", header: "Bearer " + validToken, wantStatus: http.StatusOK, wantUserID: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer token", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expiredToken, wantStatus: http.StatusUnauthorized},
		{name: "wrong signing key", header: "Bearer " + wrongKeyToken, wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubjectToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := func(w http.ResponseWriter, r *http.Request) {
				gotUserID = userIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/balance", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			auth.Require(next)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("user id in context = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestAuthRequireAdmin(t *testing.T) {
	auth := NewAuth(testSecret)

	adminToken := signToken(t, testSecret, Claims{
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	userToken := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "admin passes", token: adminToken, wantStatus: http.StatusOK},
		{name: "regular user is forbidden", token: userToken, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/wallets", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()

			auth.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid amount", err: money.ErrInvalidAmount, wantStatus: http.StatusBadRequest},
		{name: "invalid filter", err: services.ErrInvalidFilter, wantStatus: http.StatusBadRequest},
		{name: "insufficient funds", err: services.ErrInsufficientFunds, wantStatus: http.StatusPaymentRequired},
		{name: "wallet not found", err: postgresrepo.ErrWalletNotFound, wantStatus: http.StatusNotFound},
		{name: "product not found", err: postgresrepo.ErrProductNotFound, wantStatus: http.StatusNotFound},
		{name: "wallet exists", err: postgresrepo.ErrWalletExists, wantStatus: http.StatusConflict},
		{name: "auction not active", err: services.ErrAuctionNotActive, wantStatus: http.StatusUnprocessableEntity},
		{name: "bid too low", err: services.ErrBidTooLow, wantStatus: http.StatusUnprocessableEntity},
		{name: "self bid", err: services.ErrSelfBid, wantStatus: http.StatusUnprocessableEntity},
		{name: "order not cancelable", err: services.ErrOrderNotCancelable, wantStatus: http.StatusUnprocessableEntity},
		{name: "status conflict", err: postgresrepo.ErrStatusConflict, wantStatus: http.StatusConflict},
		{name: "busy", err: locks.ErrBusy, wantStatus: http.StatusTooManyRequests},
		{name: "settlement partial carries incident", err: fmt.Errorf("%w: incident inc-1", services.ErrSettlementPartial), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body["code"] != float64(tt.wantStatus) {
				t.Errorf("body code = %v, want %d", body["code"], tt.wantStatus)
			}
		})
	}
}

func TestSettlementErrorCarriesIncidentID(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("%w: incident inc-42", services.ErrSettlementPartial))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inc-42") {
		t.Errorf("body %q does not reference the incident", rec.Body.String())
	}
}
