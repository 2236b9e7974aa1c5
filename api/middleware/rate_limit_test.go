package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
)

type fakeRateLimitService struct {
	mu     sync.Mutex
	counts map[string]int64
	limit  int64
	err    error
}

func newFakeRateLimitService(limit int64) *fakeRateLimitService {
	return &fakeRateLimitService{counts: map[string]int64{}, limit: limit}
}

func (f *fakeRateLimitService) Consume(ctx context.Context, action, identifier string, limit int64, window time.Duration) (*ratelimit.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := action + ":" + identifier
	f.counts[key]++
	used := f.counts[key]
	return &ratelimit.Result{
		Allowed:    used <= f.limit,
		Used:       used,
		Remaining:  f.limit - used,
		RetryAfter: 30 * time.Second,
	}, nil
}

func (f *fakeRateLimitService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	svc := newFakeRateLimitService(2)
	handler := RateLimit("refund", 2, time.Minute, svc, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refund", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 under limit, got %d", i, rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 over limit, got %d", rec.Code)
			}
			if got := rec.Header().Get("Retry-After"); got != "30" {
				t.Fatalf("expected Retry-After 30, got %q", got)
			}
			var payload struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error payload: %v", err)
			}
			if payload.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected error code %q", payload.Code)
			}
		}
	}
}

func TestRateLimit_PrefersUserIdentity(t *testing.T) {
	svc := newFakeRateLimitService(1)
	handler := RateLimit("refund", 1, time.Minute, svc, nil)(okHandler())

	// Two users behind one proxy IP each get their own budget.
	for _, user := range []string{"user-a", "user-b"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refund", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		req = req.WithContext(WithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("user %s: expected 200, got %d", user, rec.Code)
		}
	}
	if len(svc.counts) != 2 {
		t.Fatalf("expected per-user counters, got %v", svc.counts)
	}
}

func TestRateLimit_FallsBackToForwardedIP(t *testing.T) {
	svc := newFakeRateLimitService(10)
	handler := RateLimit("onboarding", 10, time.Minute, svc, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/connect/onboarding", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := svc.counts["onboarding:203.0.113.9"]; !ok {
		t.Fatalf("expected counter keyed by forwarded ip, got %v", svc.counts)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	svc := newFakeRateLimitService(0)
	handler := RateLimit("refund", 0, time.Minute, svc, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refund", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through when disabled, got %d", rec.Code)
	}
	if len(svc.counts) != 0 {
		t.Fatalf("disabled limiter must not consume, got %v", svc.counts)
	}
}
