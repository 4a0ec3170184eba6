package qrpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payments" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, but got %q", got)
		}

		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Amount != 1320000 {
			t.Errorf("expected amount 1320000, but got %d", req.Amount)
		}

		json.NewEncoder(w).Encode(Payment{
			ID:        "pay-1",
			Status:    StatusPending,
			Amount:    req.Amount,
			Currency:  req.Currency,
			QRCode:    "data:image/png;base64,xxxx",
			Reference: req.Reference,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)

	p, err := c.CreatePayment(context.Background(), PaymentRequest{
		Amount:    1320000,
		Currency:  "VND",
		AccountNo: "12345",
		Reference: "order-1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if p.ID != "pay-1" {
		t.Errorf("expected id pay-1, but got %s", p.ID)
	}
	if p.Status != StatusPending {
		t.Errorf("expected status PENDING, but got %s", p.Status)
	}
	if p.QRCode == "" {
		t.Error("expected a qr code")
	}
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Payment{ID: "pay-1", Status: StatusPaid})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)

	p, err := c.GetPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusPaid {
		t.Errorf("expected status PAID, but got %s", p.Status)
	}
}

func TestGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "amount too small"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)

	_, err := c.CreatePayment(context.Background(), PaymentRequest{})
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *Error, but got %v", err)
	}
	if ge.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, but got %d", ge.StatusCode)
	}
	if ge.Message != "amount too small" {
		t.Errorf("expected the gateway message, but got %q", ge.Message)
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("PENDING must not be terminal")
	}
	for _, s := range []Status{StatusPaid, StatusExpired, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}
