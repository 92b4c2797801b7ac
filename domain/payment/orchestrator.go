package payment

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"payment-orchestrator/infrastructure/service"
)

const defaultAttemptTimeout = 10 * time.Second

// EventPublisher hands post-processing events to the queue. Publish failures
// are observability-only; they never reach the caller.
type EventPublisher interface {
	Publish(data []byte) error
}

// Orchestrator drives a payment intent through validation, fraud screening,
// routing, the execution state machine, settlement and post-processing fan-out.
type Orchestrator struct {
	registry       *Registry
	router         *Router
	fraud          service.FraudScreen
	settlement     *SettlementInitiator
	repo           IRepository
	events         EventPublisher
	attemptTimeout time.Duration
}

func NewOrchestrator(
	registry *Registry,
	router *Router,
	fraud service.FraudScreen,
	settlement *SettlementInitiator,
	repo IRepository,
	events EventPublisher,
) *Orchestrator {
	timeout := defaultAttemptTimeout
	if raw := os.Getenv("PROCESSOR_ATTEMPT_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	return &Orchestrator{
		registry:       registry,
		router:         router,
		fraud:          fraud,
		settlement:     settlement,
		repo:           repo,
		events:         events,
		attemptTimeout: timeout,
	}
}

// ProcessPayment runs the full orchestration and always returns a response;
// rejections and failures are encoded in it rather than returned as errors.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req PaymentRequest) *PaymentResponse {
	validated, err := Validate(req)
	if err != nil {
		return failureResponse(req.Amount, req.Currency, req.Method, err)
	}

	if validated.IdempotencyKey != "" {
		existing, err := o.repo.FindByIdempotencyKey(ctx, validated.IdempotencyKey)
		if err == nil {
			log.Infof("idempotent replay correlationId=%s transactionId=%s status=%s",
				validated.CorrelationID, existing.ID, existing.Status)
			return o.responseFromTransaction(existing)
		}
		if !errors.Is(err, ErrTransactionNotFound) {
			return failureResponse(validated.Amount, validated.Currency, validated.Method,
				NewPaymentError(CodeProcessingError, "transaction lookup failed"))
		}
	}

	verdict, err := o.assessFraud(ctx, validated)
	if err != nil {
		return failureResponse(validated.Amount, validated.Currency, validated.Method,
			NewPaymentError(CodeProcessingError, "fraud screening unavailable"))
	}
	if verdict.Blocked {
		log.Warnf("payment blocked by fraud screen correlationId=%s merchantId=%s riskScore=%d reason=%s",
			validated.CorrelationID, validated.MerchantID, verdict.RiskScore, verdict.Reason)
		o.publishRejection(validated, verdict)
		return failureResponse(validated.Amount, validated.Currency, validated.Method,
			NewPaymentError(CodeFraudDetected, "transaction blocked: "+verdict.Reason))
	}

	decision, err := o.router.Route(validated, verdict)
	if err != nil {
		return failureResponse(validated.Amount, validated.Currency, validated.Method, err)
	}
	log.Infof("routing decided correlationId=%s primary=%s backup=%s reason=%q",
		validated.CorrelationID, decision.Primary, decision.Backup, decision.Reason)

	tx, err := o.execute(ctx, validated, decision)
	if err != nil {
		return failureResponse(validated.Amount, validated.Currency, validated.Method, err)
	}

	if tx.Status == StatusCompleted && tx.Settlement == nil {
		tx.Settlement = o.settlement.Initiate(ctx, tx, validated.InstantSettlement)
		update := TransactionUpdate{Settlement: tx.Settlement}
		if err := o.repo.Update(context.WithoutCancel(ctx), tx.ID, update); err != nil {
			log.Errorf("failed to persist settlement info correlationId=%s transactionId=%s: %v",
				tx.CorrelationID, tx.ID, err)
		}
	}

	o.publishOutcome(tx, validated, verdict)
	return o.responseFromTransaction(tx)
}

// execute drives the transaction state machine:
// PENDING -> PROCESSING -> COMPLETED | FAILED, with at most one backup hop.
func (o *Orchestrator) execute(ctx context.Context, req *ValidatedRequest, decision *RoutingDecision) (*Transaction, error) {
	fees := decision.EstimatedFees
	tx := &Transaction{
		ID:             uuid.NewString(),
		IdempotencyKey: req.IdempotencyKey,
		MerchantID:     req.MerchantID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		ProcessorType:  decision.Primary,
		Status:         StatusPending,
		Fees:           &fees,
		CorrelationID:  req.CorrelationID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := o.repo.Create(ctx, tx); err != nil {
		if errors.Is(err, ErrDuplicateIdempotencyKey) {
			// Lost the race against a concurrent submission of the same key.
			existing, findErr := o.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, NewPaymentError(CodeProcessingError, "could not persist transaction")
	}

	tx.Status = StatusProcessing
	processing := StatusProcessing
	if err := o.repo.Update(ctx, tx.ID, TransactionUpdate{Status: &processing}); err != nil {
		return nil, NewPaymentError(CodeProcessingError, "could not persist transaction")
	}

	// Once an attempt starts the charge happens whether or not the caller is
	// still waiting, so outcome writes detach from caller cancellation the
	// same way the attempt itself does.
	persist := context.WithoutCancel(ctx)

	result := o.attempt(decision.Primary, tx, req)
	if result.Success {
		o.complete(persist, tx, decision.Primary, result)
		return tx, nil
	}

	if decision.Backup == "" {
		o.fail(persist, tx, decision.Primary, CodeProcessorError, result)
		return tx, nil
	}

	// Record the primary outcome before the backup hop; a crash here leaves
	// the transaction in PROCESSING, recoverable by an idempotent resubmit.
	log.Warnf("primary processor failed, trying backup correlationId=%s primary=%s backup=%s",
		req.CorrelationID, decision.Primary, decision.Backup)
	o.recordAttempt(persist, tx, decision.Primary, result)

	backupResult := o.attempt(decision.Backup, tx, req)
	if backupResult.Success {
		o.complete(persist, tx, decision.Backup, backupResult)
		return tx, nil
	}

	o.fail(persist, tx, decision.Backup, CodeBothProcessorsFailed, backupResult)
	return tx, nil
}

// attempt invokes one processor with a detached per-attempt timeout. Processors
// are at-least-once and non-interruptible, so caller cancellation does not
// abort an in-flight attempt; its outcome is still observed and persisted.
func (o *Orchestrator) attempt(processorType string, tx *Transaction, req *ValidatedRequest) *service.ProcessResult {
	impl, ok := o.registry.Processor(processorType)
	if !ok {
		return &service.ProcessResult{
			Success:      false,
			ErrorCode:    CodeNoProcessorAvailable,
			ErrorMessage: "processor not registered: " + processorType,
		}
	}

	attemptCtx, cancel := context.WithTimeout(context.Background(), o.attemptTimeout)
	defer cancel()

	start := time.Now()
	result, err := impl.Process(attemptCtx, service.ProcessRequest{
		TransactionID: tx.ID,
		CorrelationID: tx.CorrelationID,
		MerchantID:    req.MerchantID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        req.Method,
		CustomerRef:   req.Customer.Reference,
		RequestedAt:   start.UTC(),
	})
	elapsed := time.Since(start)

	o.registry.ObserveLatency(processorType, elapsed)

	if err != nil {
		// Timeouts and transport failures count the same as an explicit
		// processor failure.
		result = &service.ProcessResult{
			Success:      false,
			ErrorCode:    CodeProcessorError,
			ErrorMessage: err.Error(),
		}
	}

	o.registry.UpdateSuccessRate(processorType, result.Success)
	log.Infof("processor attempt correlationId=%s transactionId=%s processor=%s success=%t elapsed=%s",
		tx.CorrelationID, tx.ID, processorType, result.Success, elapsed)
	return result
}

func (o *Orchestrator) complete(ctx context.Context, tx *Transaction, processorType string, result *service.ProcessResult) {
	now := time.Now().UTC()
	tx.Status = StatusCompleted
	tx.ProcessorType = processorType
	tx.ProcessorReference = result.Reference
	tx.ErrorCode = ""
	tx.ErrorMessage = ""
	tx.CompletedAt = &now

	// Clear any earlier attempt's error fields; those belong to failed
	// transactions only.
	completed := StatusCompleted
	noError := ""
	update := TransactionUpdate{
		Status:             &completed,
		ProcessorType:      &processorType,
		ProcessorReference: &result.Reference,
		ErrorCode:          &noError,
		ErrorMessage:       &noError,
		CompletedAt:        &now,
	}
	if err := o.repo.Update(ctx, tx.ID, update); err != nil {
		log.Errorf("failed to persist completion correlationId=%s transactionId=%s: %v",
			tx.CorrelationID, tx.ID, err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, tx *Transaction, processorType, code string, result *service.ProcessResult) {
	now := time.Now().UTC()
	tx.Status = StatusFailed
	tx.ProcessorType = processorType
	tx.ErrorCode = code
	tx.ErrorMessage = result.ErrorMessage
	tx.FailedAt = &now

	failed := StatusFailed
	update := TransactionUpdate{
		Status:        &failed,
		ProcessorType: &processorType,
		ErrorCode:     &code,
		ErrorMessage:  &result.ErrorMessage,
		FailedAt:      &now,
	}
	if err := o.repo.Update(ctx, tx.ID, update); err != nil {
		log.Errorf("failed to persist failure correlationId=%s transactionId=%s: %v",
			tx.CorrelationID, tx.ID, err)
	}
}

// recordAttempt persists a non-terminal attempt outcome while the transaction
// stays in PROCESSING.
func (o *Orchestrator) recordAttempt(ctx context.Context, tx *Transaction, processorType string, result *service.ProcessResult) {
	update := TransactionUpdate{
		ProcessorType: &processorType,
		ErrorCode:     &result.ErrorCode,
		ErrorMessage:  &result.ErrorMessage,
	}
	if err := o.repo.Update(ctx, tx.ID, update); err != nil {
		log.Errorf("failed to persist attempt outcome correlationId=%s transactionId=%s: %v",
			tx.CorrelationID, tx.ID, err)
	}
}

func (o *Orchestrator) assessFraud(ctx context.Context, req *ValidatedRequest) (FraudVerdict, error) {
	result, err := o.fraud.Assess(ctx, service.AssessRequest{
		CorrelationID: req.CorrelationID,
		MerchantID:    req.MerchantID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        req.Method,
		CustomerRef:   req.Customer.Reference,
		CustomerEmail: req.Customer.Email,
		Country:       req.Customer.Country,
	})
	if err != nil {
		return FraudVerdict{}, err
	}
	return FraudVerdict{RiskScore: result.RiskScore, Blocked: result.Blocked, Reason: result.Reason}, nil
}

func (o *Orchestrator) publishOutcome(tx *Transaction, req *ValidatedRequest, verdict FraudVerdict) {
	occurredAt := tx.CreatedAt
	if tx.CompletedAt != nil {
		occurredAt = *tx.CompletedAt
	} else if tx.FailedAt != nil {
		occurredAt = *tx.FailedAt
	}

	totalFee := int64(0)
	if tx.Fees != nil {
		totalFee = tx.Fees.TotalFee
	}

	o.publishEvent(service.PaymentEvent{
		TransactionID:   tx.ID,
		CorrelationID:   tx.CorrelationID,
		MerchantID:      tx.MerchantID,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Method:          tx.Method,
		ProcessorType:   tx.ProcessorType,
		Status:          string(tx.Status),
		TotalFee:        totalFee,
		RiskScore:       verdict.RiskScore,
		GenerateReceipt: req.GenerateReceipt,
		OccurredAt:      occurredAt,
	})
}

// publishRejection records a fraud block for analytics. No Transaction exists
// for a blocked request, only this rejection event.
func (o *Orchestrator) publishRejection(req *ValidatedRequest, verdict FraudVerdict) {
	o.publishEvent(service.PaymentEvent{
		CorrelationID: req.CorrelationID,
		MerchantID:    req.MerchantID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        req.Method,
		Status:        "REJECTED",
		RiskScore:     verdict.RiskScore,
		OccurredAt:    time.Now().UTC(),
	})
}

func (o *Orchestrator) publishEvent(event service.PaymentEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("could not marshal payment event correlationId=%s: %v", event.CorrelationID, err)
		return
	}
	if err = o.events.Publish(data); err != nil {
		log.Errorf("could not publish payment event correlationId=%s: %v", event.CorrelationID, err)
	}
}

func (o *Orchestrator) responseFromTransaction(tx *Transaction) *PaymentResponse {
	resp := &PaymentResponse{
		Success:       tx.Status == StatusCompleted,
		TransactionID: tx.ID,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Method:        tx.Method,
		ProcessorType: tx.ProcessorType,
		Fees:          tx.Fees,
		Settlement:    tx.Settlement,
		Timestamp:     time.Now().UTC(),
	}
	if tx.Status == StatusFailed {
		resp.Error = &ErrorDetail{Code: tx.ErrorCode, Message: tx.ErrorMessage}
	}
	return resp
}

func failureResponse(amount int64, currency, method string, err error) *PaymentResponse {
	detail := &ErrorDetail{Code: Code(err), Message: err.Error()}
	var pe *PaymentError
	if errors.As(err, &pe) {
		detail.Message = pe.Message
	}

	return &PaymentResponse{
		Success:   false,
		Status:    StatusFailed,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Error:     detail,
		Timestamp: time.Now().UTC(),
	}
}
