package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestTransaction_MarshalsCamelCase(t *testing.T) {
	t.Parallel()

	completedAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	tx := Transaction{
		ID:                 "tx-1",
		MerchantID:         "m-1",
		Amount:             2000,
		Currency:           "USD",
		Method:             "card",
		ProcessorType:      "card_primary",
		Status:             StatusCompleted,
		ProcessorReference: "auth-1",
		CorrelationID:      "corr-1",
		CreatedAt:          completedAt.Add(-time.Second),
		CompletedAt:        &completedAt,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	payload := string(data)
	for _, key := range []string{`"merchantId"`, `"processorType"`, `"processorReference"`, `"correlationId"`, `"createdAt"`, `"completedAt"`} {
		if !strings.Contains(payload, key) {
			t.Errorf("expected %s in payload: %s", key, payload)
		}
	}
	if strings.Contains(payload, `"MerchantID"`) || strings.Contains(payload, `"CreatedAt"`) {
		t.Fatalf("payload leaks Go field names: %s", payload)
	}
	if strings.Contains(payload, `"errorCode"`) || strings.Contains(payload, `"settlement"`) {
		t.Fatalf("empty optional fields must be omitted: %s", payload)
	}
}
