package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallet-escrow-service/internal/repositories/redisrepo"
)

// memoryIdemStore keeps idempotency records in a map, matching the
// claim/replay contract of the Redis store.
type memoryIdemStore struct {
	records  map[string][]byte
	inFlight map[string]bool
	begins   int
	aborts   int
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{
		records:  make(map[string][]byte),
		inFlight: make(map[string]bool),
	}
}

func (m *memoryIdemStore) Begin(ctx context.Context, key string) ([]byte, error) {
	m.begins++
	if m.inFlight[key] {
		return nil, redisrepo.ErrIdempotencyInFlight
	}
	if rec, ok := m.records[key]; ok {
		return rec, nil
	}
	m.inFlight[key] = true
	return nil, nil
}

func (m *memoryIdemStore) Complete(ctx context.Context, key string, response []byte) error {
	delete(m.inFlight, key)
	m.records[key] = response
	return nil
}

func (m *memoryIdemStore) Abort(ctx context.Context, key string) error {
	delete(m.inFlight, key)
	m.aborts++
	return nil
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/deposit", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotentReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	wrapped := NewIdempotent(store).Wrap(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusCreated, map[string]string{"transactionId": "txn-1"})
	})

	first := httptest.NewRecorder()
	wrapped(first, postWithKey("key-1"))
	if calls != 1 || first.Code != http.StatusCreated {
		t.Fatalf("first request: calls=%d code=%d", calls, first.Code)
	}

	second := httptest.NewRecorder()
	wrapped(second, postWithKey("key-1"))
	if calls != 1 {
		t.Fatalf("retry re-executed the handler, calls=%d", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replayed status = %d, want %d", second.Code, http.StatusCreated)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotentInFlightRetryGets429(t *testing.T) {
	store := newMemoryIdemStore()
	store.inFlight["key-1"] = true

	calls := 0
	wrapped := NewIdempotent(store).Wrap(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	rec := httptest.NewRecorder()
	wrapped(rec, postWithKey("key-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if calls != 0 {
		t.Errorf("in-flight retry executed the handler")
	}
}

func TestIdempotentFailureFreesKey(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	wrapped := NewIdempotent(store).Wrap(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeError(w, http.StatusInternalServerError, "boom")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
	})

	first := httptest.NewRecorder()
	wrapped(first, postWithKey("key-1"))
	if store.aborts != 1 {
		t.Fatalf("aborts = %d, want 1", store.aborts)
	}
	if len(store.records) != 0 {
		t.Fatalf("failed response was stored for replay")
	}

	// The client may retry the operation itself after a failure.
	second := httptest.NewRecorder()
	wrapped(second, postWithKey("key-1"))
	if calls != 2 {
		t.Errorf("retry after failure did not re-execute, calls=%d", calls)
	}
	if second.Code != http.StatusOK {
		t.Errorf("retry status = %d, want 200", second.Code)
	}
	if !strings.Contains(second.Body.String(), "ok") {
		t.Errorf("retry body = %q", second.Body.String())
	}
}

func TestIdempotentWithoutKeyBypassesStore(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	wrapped := NewIdempotent(store).Wrap(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
	})

	rec := httptest.NewRecorder()
	wrapped(rec, postWithKey(""))
	if calls != 1 {
		t.Fatalf("handler not invoked")
	}
	if store.begins != 0 || len(store.records) != 0 {
		t.Errorf("store touched without a key: begins=%d records=%d", store.begins, len(store.records))
	}
}
