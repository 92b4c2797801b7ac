package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestHTTPProcessor_Success(t *testing.T) {
	t.Parallel()

	var received ProcessRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ProcessResult{Success: true, Reference: "auth-1"})
	}))
	defer server.Close()

	p := NewHTTPProcessor("card_primary", server.URL)
	if p.Type() != "card_primary" {
		t.Fatalf("unexpected type: %s", p.Type())
	}

	result, err := p.Process(context.Background(), ProcessRequest{
		TransactionID: "tx-1",
		CorrelationID: "corr-1",
		Amount:        2000,
		Currency:      "USD",
		RequestedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Reference != "auth-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if received.TransactionID != "tx-1" || received.CorrelationID != "corr-1" {
		t.Fatalf("request payload incomplete: %+v", received)
	}
}

func TestHTTPProcessor_UnprocessableEntity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	p := NewHTTPProcessor("card_primary", server.URL)
	_, err := p.Process(context.Background(), ProcessRequest{TransactionID: "tx-1"})
	if !errors.Is(err, ErrUnprocessableEntity) {
		t.Fatalf("expected ErrUnprocessableEntity, got %v", err)
	}
}

func TestHTTPProcessor_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewHTTPProcessor("card_primary", server.URL)
	if _, err := p.Process(context.Background(), ProcessRequest{TransactionID: "tx-1"}); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestHTTPProcessor_ContextTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := NewHTTPProcessor("card_primary", server.URL)
	if _, err := p.Process(ctx, ProcessRequest{TransactionID: "tx-1"}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPFraudScreen_Assess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assess" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(AssessResult{RiskScore: 88, Blocked: true, Reason: "velocity"})
	}))
	defer server.Close()

	screen := NewHTTPFraudScreen(server.URL)
	result, err := screen.Assess(context.Background(), AssessRequest{CorrelationID: "corr-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Blocked || result.RiskScore != 88 || result.Reason != "velocity" {
		t.Fatalf("unexpected verdict: %+v", result)
	}
}

func TestHTTPSettlementEngine_SettleInstant(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/settlements/instant" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(SettlementResult{SettlementID: "stl-1", Status: "settled"})
	}))
	defer server.Close()

	engine := NewHTTPSettlementEngine(server.URL)
	result, err := engine.SettleInstant(context.Background(), SettleRequest{TransactionID: "tx-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SettlementID != "stl-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestNotifier_ErrorOnFailureStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	if err := n.Notify(context.Background(), PaymentEvent{TransactionID: "tx-1"}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestNotifier_Success(t *testing.T) {
	t.Parallel()

	var received PaymentEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode event: %v", err)
		}
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	err := n.Notify(context.Background(), PaymentEvent{TransactionID: "tx-1", Status: "COMPLETED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.TransactionID != "tx-1" {
		t.Fatalf("event payload incomplete: %+v", received)
	}
}
