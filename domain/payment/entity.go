package payment

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

type Customer struct {
	Reference string `json:"reference"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Country   string `json:"country"`
}

// PaymentRequest is the immutable caller input. Amount is in currency minor
// units.
type PaymentRequest struct {
	Amount            int64    `json:"amount"`
	Currency          string   `json:"currency"`
	Method            string   `json:"method"`
	MerchantID        string   `json:"merchantId"`
	MerchantTier      string   `json:"merchantTier,omitempty"`
	Customer          Customer `json:"customer"`
	IdempotencyKey    string   `json:"idempotencyKey,omitempty"`
	CorrelationID     string   `json:"correlationId,omitempty"`
	InstantSettlement bool     `json:"instantSettlement,omitempty"`
	GenerateReceipt   bool     `json:"generateReceipt,omitempty"`
}

// ValidatedRequest is a normalized PaymentRequest with a correlation ID always
// present. Only the validator produces one.
type ValidatedRequest struct {
	Amount            int64
	Currency          string
	Method            string
	MerchantID        string
	MerchantTier      string
	Customer          Customer
	IdempotencyKey    string
	CorrelationID     string
	InstantSettlement bool
	GenerateReceipt   bool
}

type FraudVerdict struct {
	RiskScore int    `json:"riskScore"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason,omitempty"`
}

// Rate pairs a percentage expressed in basis points with a fixed amount in
// minor units. Basis points keep the money path on integer arithmetic.
type Rate struct {
	BasisPoints int64 `json:"basisPoints"`
	Fixed       int64 `json:"fixed"`
}

type FeeBreakdown struct {
	Currency           string `json:"currency"`
	BaseRate           Rate   `json:"baseRate"`
	TierDiscount       Rate   `json:"tierDiscount"`
	RegionalAdjustment Rate   `json:"regionalAdjustment"`
	Region             string `json:"region"`
	FinalRate          Rate   `json:"finalRate"`
	PercentageFee      int64  `json:"percentageFee"`
	FixedFee           int64  `json:"fixedFee"`
	TotalFee           int64  `json:"totalFee"`
	GrossAmount        int64  `json:"grossAmount"`
	NetAmount          int64  `json:"netAmount"`
}

// RoutingDecision is created once per request and immutable thereafter. Backup
// is empty when no capable processor of a different type exists.
type RoutingDecision struct {
	Primary          string        `json:"primary"`
	Backup           string        `json:"backup,omitempty"`
	Reason           string        `json:"reason"`
	EstimatedLatency time.Duration `json:"estimatedLatency"`
	EstimatedFees    FeeBreakdown  `json:"estimatedFees"`
}

const (
	SettlementTypeInstant   = "instant"
	SettlementTypeScheduled = "scheduled"
)

type SettlementInfo struct {
	Type         string     `json:"type"`
	SettlementID string     `json:"settlementId,omitempty"`
	Reference    string     `json:"reference,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	SettledAt    *time.Time `json:"settledAt,omitempty"`
	Warning      string     `json:"warning,omitempty"`
}

// Transaction is the central mutable entity. Only the execution coordinator
// mutates its status, and every write goes through the repository.
type Transaction struct {
	ID                 string          `json:"id" db:"id"`
	IdempotencyKey     string          `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	MerchantID         string          `json:"merchantId" db:"merchant_id"`
	Amount             int64           `json:"amount" db:"amount"`
	Currency           string          `json:"currency" db:"currency"`
	Method             string          `json:"method" db:"method"`
	ProcessorType      string          `json:"processorType,omitempty" db:"processor_type"`
	Status             Status          `json:"status" db:"status"`
	ProcessorReference string          `json:"processorReference,omitempty" db:"processor_reference"`
	ErrorCode          string          `json:"errorCode,omitempty" db:"error_code"`
	ErrorMessage       string          `json:"errorMessage,omitempty" db:"error_message"`
	Fees               *FeeBreakdown   `json:"fees,omitempty" db:"fees"`
	Settlement         *SettlementInfo `json:"settlement,omitempty" db:"settlement"`
	CorrelationID      string          `json:"correlationId" db:"correlation_id"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	FailedAt           *time.Time      `json:"failedAt,omitempty" db:"failed_at"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PaymentResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId,omitempty"`
	Status        Status          `json:"status"`
	Amount        int64           `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	ProcessorType string          `json:"processorType,omitempty"`
	Fees          *FeeBreakdown   `json:"fees,omitempty"`
	Settlement    *SettlementInfo `json:"settlement,omitempty"`
	Error         *ErrorDetail    `json:"error,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}
