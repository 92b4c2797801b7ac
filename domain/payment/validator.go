package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Per-currency ceilings in minor units. Roughly equivalent purchasing power to
// the 10,000 USD single-transaction limit.
var currencyCeilings = map[string]int64{
	"USD": 1_000_000,
	"EUR": 1_000_000,
	"GBP": 1_000_000,
	"KES": 130_000_000,
	"TZS": 2_500_000_000,
	"UGX": 3_700_000_000,
	"RWF": 1_300_000_000,
}

var supportedMethods = map[string]struct{}{
	"card":           {},
	"mobile_money":   {},
	"bank_transfer":  {},
	"crypto":         {},
	"digital_wallet": {},
}

const defaultMerchantTier = "standard"

// Validate normalizes and checks a payment intent before any side effect
// occurs. Its only non-pure behavior is minting a correlation ID when the
// caller did not supply one.
func Validate(req PaymentRequest) (*ValidatedRequest, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	method := strings.ToLower(strings.TrimSpace(req.Method))

	ceiling, currencyOK := currencyCeilings[currency]
	if !currencyOK {
		return nil, NewPaymentError(CodeUnsupportedCurrency, fmt.Sprintf("unsupported currency: %s", req.Currency))
	}

	if req.Amount <= 0 {
		return nil, NewPaymentError(CodeAmountInvalid, "amount must be greater than zero")
	}
	if req.Amount > ceiling {
		return nil, NewPaymentError(CodeAmountInvalid, fmt.Sprintf("amount exceeds %s transaction ceiling", currency))
	}

	if _, ok := supportedMethods[method]; !ok {
		return nil, NewPaymentError(CodeUnsupportedMethod, fmt.Sprintf("unsupported payment method: %s", req.Method))
	}

	if strings.TrimSpace(req.MerchantID) == "" {
		return nil, NewPaymentError(CodeValidationError, "merchantId is required")
	}

	tier := strings.ToLower(strings.TrimSpace(req.MerchantTier))
	if tier == "" {
		tier = defaultMerchantTier
	}

	correlationID := strings.TrimSpace(req.CorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	return &ValidatedRequest{
		Amount:       req.Amount,
		Currency:     currency,
		Method:       method,
		MerchantID:   strings.TrimSpace(req.MerchantID),
		MerchantTier: tier,
		Customer: Customer{
			Reference: strings.TrimSpace(req.Customer.Reference),
			Email:     strings.ToLower(strings.TrimSpace(req.Customer.Email)),
			Name:      strings.TrimSpace(req.Customer.Name),
			Country:   strings.ToUpper(strings.TrimSpace(req.Customer.Country)),
		},
		IdempotencyKey:    strings.TrimSpace(req.IdempotencyKey),
		CorrelationID:     correlationID,
		InstantSettlement: req.InstantSettlement,
		GenerateReceipt:   req.GenerateReceipt,
	}, nil
}
