package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wallet-escrow-service/internal/repositories/redisrepo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyUserID  contextKey = "userID"
	contextKeyIsAdmin contextKey = "isAdmin"
)

// Auth validates Bearer tokens and stores the caller's identity in the
// request context.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Claims is the token payload: the subject is the user id.
type Claims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (a *Auth) parseToken(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errors.New("missing bearer token")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Require rejects unauthenticated requests with 401.
func (a *Auth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.parseToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, contextKeyIsAdmin, claims.IsAdmin)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin additionally checks the admin claim.
func (a *Auth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		if isAdmin, _ := r.Context().Value(contextKeyIsAdmin).(bool); !isAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(contextKeyUserID).(string)
	return userID
}

// storedResponse is what the idempotency store keeps per key.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// responseRecorder captures the handler's output so a successful
// response can be stored for replay.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// IdempotencyStore claims keys and replays stored responses.
// *redisrepo.IdempotencyStore is the production implementation.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) ([]byte, error)
	Complete(ctx context.Context, key string, response []byte) error
	Abort(ctx context.Context, key string) error
}

// Idempotent makes a mutating endpoint safe to retry. Requests without
// an Idempotency-Key header pass through unchanged; with one, the first
// request executes and its response is stored, retries replay it, and a
// retry racing the original gets 429.
type Idempotent struct {
	store IdempotencyStore
}

func NewIdempotent(store IdempotencyStore) *Idempotent {
	return &Idempotent{store: store}
}

func (i *Idempotent) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r)
			return
		}

		stored, err := i.store.Begin(r.Context(), key)
		if err != nil {
			if errors.Is(err, redisrepo.ErrIdempotencyInFlight) {
				writeError(w, http.StatusTooManyRequests, "Request with this idempotency key is in flight")
				return
			}
			logrus.WithError(err).Warn("idempotency store unavailable, serving request directly")
			next(w, r)
			return
		}

		if stored != nil {
			var resp storedResponse
			if err := json.Unmarshal(stored, &resp); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(resp.Status)
				w.Write(resp.Body)
				return
			}
			// Unreadable record, fall through and re-execute.
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)

		if recorder.status >= 200 && recorder.status < 300 {
			payload, err := json.Marshal(storedResponse{
				Status: recorder.status,
				Body:   recorder.body.Bytes(),
			})
			if err == nil {
				if err := i.store.Complete(r.Context(), key, payload); err != nil {
					logrus.WithError(err).Warn("failed to store idempotent response")
				}
				return
			}
		}
		if err := i.store.Abort(r.Context(), key); err != nil {
			logrus.WithError(err).Warn("failed to clear idempotency key")
		}
	}
}
