package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/api/middleware"
	"github.com/luisherrera/barberlane-backend/internal/refunds"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type fakeRefundService struct {
	params []refunds.RefundParams
	result *refunds.Result
	err    error
}

func (f *fakeRefundService) Refund(ctx context.Context, params refunds.RefundParams) (*refunds.Result, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "test"})
}

func postRefund(t *testing.T, handler http.HandlerFunc, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/refunds", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateRefund_BindsSnakeCaseBody(t *testing.T) {
	svc := &fakeRefundService{result: &refunds.Result{RefundID: "re_1", RefundedCents: 2000, RemainingCents: 3000}}
	handler := CreateRefund(svc, testLogger(t))

	userID := uuid.New()
	bookingID := uuid.New()
	body := `{"booking_id":"` + bookingID.String() + `","payment_intent_id":"pi_1","amount_cents":2000,"reason":"requested_by_customer"}`

	rec := postRefund(t, handler, userID.String(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.params) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.params))
	}
	got := svc.params[0]
	if got.UserID != userID || got.BookingID != bookingID {
		t.Fatalf("unexpected identities %+v", got)
	}
	if got.PaymentIntentID != "pi_1" || got.AmountCents == nil || *got.AmountCents != 2000 || got.Reason != "requested_by_customer" {
		t.Fatalf("unexpected params %+v", got)
	}

	var env struct {
		Success bool           `json:"success"`
		Data    refunds.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success || env.Data.RefundID != "re_1" || env.Data.RemainingCents != 3000 {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestCreateRefund_RejectsUnknownFields(t *testing.T) {
	svc := &fakeRefundService{}
	handler := CreateRefund(svc, testLogger(t))

	body := `{"bookingId":"` + uuid.NewString() + `","amountCents":2000}`
	rec := postRefund(t, handler, uuid.NewString(), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.params) != 0 {
		t.Fatalf("service must not be called on a malformed body")
	}
}

func TestCreateRefund_RequiresAuthenticatedUser(t *testing.T) {
	svc := &fakeRefundService{}
	handler := CreateRefund(svc, testLogger(t))

	rec := postRefund(t, handler, "", `{"booking_id":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(svc.params) != 0 {
		t.Fatalf("service must not be called without a user")
	}
}
