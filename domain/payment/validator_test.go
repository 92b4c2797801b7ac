package payment

import (
	"errors"
	"testing"
)

func validRequest() PaymentRequest {
	return PaymentRequest{
		Amount:     2000,
		Currency:   "USD",
		Method:     "card",
		MerchantID: "m-1",
		Customer: Customer{
			Reference: "cust-1",
			Email:     "Jane.Doe@Example.COM ",
			Name:      " Jane Doe ",
			Country:   "us",
		},
	}
}

func TestValidate_RejectsBadAmounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount int64
	}{
		{"zero", 0},
		{"negative", -500},
		{"over ceiling", 1_000_001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			req.Amount = tt.amount

			_, err := Validate(req)
			if err == nil {
				t.Fatal("expected error")
			}
			if Code(err) != CodeAmountInvalid {
				t.Fatalf("expected %s, got %s", CodeAmountInvalid, Code(err))
			}
		})
	}
}

func TestValidate_RejectsUnsupportedCurrencyAndMethod(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Currency = "XXX"
	if _, err := Validate(req); Code(err) != CodeUnsupportedCurrency {
		t.Fatalf("expected %s, got %v", CodeUnsupportedCurrency, err)
	}

	req = validRequest()
	req.Method = "carrier_pigeon"
	if _, err := Validate(req); Code(err) != CodeUnsupportedMethod {
		t.Fatalf("expected %s, got %v", CodeUnsupportedMethod, err)
	}
}

func TestValidate_RequiresMerchant(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.MerchantID = "  "

	_, err := Validate(req)
	var pe *PaymentError
	if !errors.As(err, &pe) || pe.Code != CodeValidationError {
		t.Fatalf("expected %s, got %v", CodeValidationError, err)
	}
}

func TestValidate_NormalizesFields(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Currency = " usd "
	req.Method = " CARD "

	validated, err := Validate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if validated.Currency != "USD" {
		t.Errorf("currency: expected USD, got %q", validated.Currency)
	}
	if validated.Method != "card" {
		t.Errorf("method: expected card, got %q", validated.Method)
	}
	if validated.Customer.Email != "jane.doe@example.com" {
		t.Errorf("email not normalized: %q", validated.Customer.Email)
	}
	if validated.Customer.Name != "Jane Doe" {
		t.Errorf("name not trimmed: %q", validated.Customer.Name)
	}
	if validated.Customer.Country != "US" {
		t.Errorf("country not upper-cased: %q", validated.Customer.Country)
	}
	if validated.MerchantTier != "standard" {
		t.Errorf("expected default tier standard, got %q", validated.MerchantTier)
	}
	if validated.CorrelationID == "" {
		t.Error("expected a fresh correlation ID")
	}
}

func TestValidate_KeepsCallerCorrelationID(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.CorrelationID = "corr-42"

	validated, err := Validate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validated.CorrelationID != "corr-42" {
		t.Fatalf("expected caller correlation ID preserved, got %q", validated.CorrelationID)
	}
}
