package payment

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"payment-orchestrator/infrastructure/service"
)

const defaultSettlementOffset = 24 * time.Hour

// SettlementInitiator decides instant vs. scheduled settlement for a completed
// transaction. Funds capture and settlement have different failure domains, so
// an instant settlement failure degrades to a warning instead of rolling the
// payment back.
type SettlementInitiator struct {
	engine service.SettlementEngine
	offset time.Duration
}

func NewSettlementInitiator(engine service.SettlementEngine) *SettlementInitiator {
	offset := defaultSettlementOffset
	if raw := os.Getenv("SETTLEMENT_SCHEDULE_OFFSET"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return &SettlementInitiator{engine: engine, offset: offset}
}

func (s *SettlementInitiator) Initiate(ctx context.Context, tx *Transaction, instant bool) *SettlementInfo {
	if instant {
		result, err := s.engine.SettleInstant(ctx, service.SettleRequest{
			TransactionID: tx.ID,
			MerchantID:    tx.MerchantID,
			Amount:        tx.Amount,
			Currency:      tx.Currency,
		})
		if err != nil {
			log.Warnf("instant settlement failed, payment stands correlationId=%s transactionId=%s: %v",
				tx.CorrelationID, tx.ID, err)
			return &SettlementInfo{
				Type:    SettlementTypeInstant,
				Warning: "instant settlement failed, funds will settle on the next scheduled window",
			}
		}
		return &SettlementInfo{
			Type:         SettlementTypeInstant,
			SettlementID: result.SettlementID,
			Reference:    result.Reference,
			SettledAt:    &result.SettledAt,
		}
	}

	// Deterministic descriptor: completion timestamp plus the configured
	// offset.
	scheduledFor := tx.CompletedAt.Add(s.offset)
	return &SettlementInfo{
		Type:         SettlementTypeScheduled,
		ScheduledFor: &scheduledFor,
	}
}
