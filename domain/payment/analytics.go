package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"payment-orchestrator/infrastructure/service"
)

// AnalyticsSink keeps per-merchant payment aggregates in Redis. It is a
// post-processing sink: writes are best-effort and reads back the
// /payments-summary endpoint.
type AnalyticsSink struct {
	client *redis.Client
}

func NewAnalyticsSink(client *redis.Client) *AnalyticsSink {
	return &AnalyticsSink{client}
}

func merchantAmountsKey(merchantID string) string {
	return fmt.Sprintf("analytics:%s:amounts", merchantID)
}

func merchantHistoryKey(merchantID string) string {
	return fmt.Sprintf("analytics:%s:history", merchantID)
}

const processorCountersKey = "analytics:processors"

func (a *AnalyticsSink) Record(ctx context.Context, event service.PaymentEvent) error {
	// Rejections and failures only bump the status counters; amounts track
	// captured funds.
	pipe := a.client.TxPipeline()
	pipe.HIncrBy(ctx, processorCountersKey, event.ProcessorType+":"+event.Status, 1)

	if event.Status == string(StatusCompleted) {
		pipe.HSet(ctx, merchantAmountsKey(event.MerchantID), event.TransactionID, event.Amount)
		pipe.ZAdd(ctx, merchantHistoryKey(event.MerchantID), redis.Z{
			Score:  float64(event.OccurredAt.UnixMilli()),
			Member: event.TransactionID,
		})
	}

	_, err := pipe.Exec(ctx)
	return err
}

type MerchantSummary struct {
	MerchantID    string `json:"merchantId"`
	TotalPayments int    `json:"totalPayments"`
	TotalAmount   int64  `json:"totalAmount"`
}

// MerchantSummary aggregates completed payments for a merchant over an
// optional time window.
func (a *AnalyticsSink) MerchantSummary(ctx context.Context, merchantID string, from, to *time.Time) (*MerchantSummary, error) {
	var (
		lower = int64(0)
		upper = time.Now().UTC().UnixMilli()
	)
	if from != nil {
		lower = from.UnixMilli()
	}
	if to != nil {
		upper = to.UnixMilli()
	}

	ids, err := a.client.ZRangeByScore(ctx, merchantHistoryKey(merchantID), &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", lower),
		Max: fmt.Sprintf("%d", upper),
	}).Result()
	if err != nil {
		return nil, err
	}

	summary := &MerchantSummary{MerchantID: merchantID, TotalPayments: len(ids)}
	if len(ids) == 0 {
		return summary, nil
	}

	amounts, err := a.client.HMGet(ctx, merchantAmountsKey(merchantID), ids...).Result()
	if err != nil {
		return nil, err
	}

	for _, raw := range amounts {
		if raw == nil {
			continue
		}
		value, canCast := raw.(string)
		if !canCast {
			return nil, fmt.Errorf("invalid type for amount")
		}
		amount, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount value: %v", err)
		}
		summary.TotalAmount += amount
	}

	return summary, nil
}
