package payment

import (
	"testing"
)

func testValidated(method, currency string) *ValidatedRequest {
	return &ValidatedRequest{
		Amount:        2000,
		Currency:      currency,
		Method:        method,
		MerchantID:    "m-1",
		MerchantTier:  "standard",
		Customer:      Customer{Reference: "cust-1", Country: "US"},
		CorrelationID: "corr-1",
	}
}

func TestRoute_NoProcessorAvailable(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewRegistry(), RouterConfig{})

	_, err := router.Route(testValidated("card", "USD"), FraudVerdict{})
	if err == nil {
		t.Fatal("expected error")
	}
	if Code(err) != CodeNoProcessorAvailable {
		t.Fatalf("expected %s, got %s", CodeNoProcessorAvailable, Code(err))
	}
}

func TestRoute_PicksHighestScore(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "expensive_reliable", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.99, CostRating: 0.9,
	})
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "cheap_reliable", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.97, CostRating: 0.1,
	})
	router := NewRouter(r, RouterConfig{})

	decision, err := router.Route(testValidated("card", "USD"), FraudVerdict{RiskScore: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.99*0.7 + 0.1*0.3 = 0.723 vs 0.97*0.7 + 0.9*0.3 = 0.949
	if decision.Primary != "cheap_reliable" {
		t.Fatalf("expected cheap_reliable as primary, got %s", decision.Primary)
	}
	if decision.Backup != "expensive_reliable" {
		t.Fatalf("expected expensive_reliable as backup, got %s", decision.Backup)
	}
	if decision.Reason == "" {
		t.Error("expected a selection rationale")
	}
	if decision.EstimatedFees.TotalFee != 88 {
		t.Errorf("expected estimated fee 88, got %d", decision.EstimatedFees.TotalFee)
	}
}

func TestRoute_TieBreaksByRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "first", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.95, CostRating: 0.5,
	})
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "second", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.95, CostRating: 0.5,
	})
	router := NewRouter(r, RouterConfig{})

	for i := 0; i < 10; i++ {
		decision, err := router.Route(testValidated("card", "USD"), FraudVerdict{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decision.Primary != "first" {
			t.Fatalf("tie-break not deterministic: got primary %s on call %d", decision.Primary, i)
		}
		if decision.Backup != "second" {
			t.Fatalf("expected backup second, got %s", decision.Backup)
		}
	}
}

func TestRoute_NoBackupWhenSingleCandidate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "only_one", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.9, CostRating: 0.5,
	})
	router := NewRouter(r, RouterConfig{})

	decision, err := router.Route(testValidated("card", "USD"), FraudVerdict{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Primary != "only_one" {
		t.Fatalf("expected only_one, got %s", decision.Primary)
	}
	if decision.Backup != "" {
		t.Fatalf("expected no backup, got %s", decision.Backup)
	}
}

func TestRoute_CustomWeights(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "reliable", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.99, CostRating: 0.9,
	})
	registerTestProcessor(t, r, ProcessorDescriptor{
		Type: "cheap", Methods: []string{"card"}, Currencies: []string{"USD"},
		SuccessRate: 0.80, CostRating: 0.1,
	})

	// All weight on success rate flips the outcome.
	router := NewRouter(r, RouterConfig{SuccessWeight: 1.0, CostWeight: 0.0})
	decision, err := router.Route(testValidated("card", "USD"), FraudVerdict{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Primary != "reliable" {
		t.Fatalf("expected reliable with success-only weights, got %s", decision.Primary)
	}
}
