package service

import "time"

// ProcessRequest is the payload sent to a payment processor. Processors must be
// idempotent with respect to TransactionID.
type ProcessRequest struct {
	TransactionID string    `json:"transactionId"`
	CorrelationID string    `json:"correlationId"`
	MerchantID    string    `json:"merchantId"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Method        string    `json:"method"`
	CustomerRef   string    `json:"customerRef"`
	RequestedAt   time.Time `json:"requestedAt"`
}

type ProcessResult struct {
	Success      bool   `json:"success"`
	Reference    string `json:"reference"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type AssessRequest struct {
	CorrelationID string `json:"correlationId"`
	MerchantID    string `json:"merchantId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
	CustomerRef   string `json:"customerRef"`
	CustomerEmail string `json:"customerEmail"`
	Country       string `json:"country"`
}

type AssessResult struct {
	RiskScore int    `json:"riskScore"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason,omitempty"`
}

type SettleRequest struct {
	TransactionID string `json:"transactionId"`
	MerchantID    string `json:"merchantId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type SettlementResult struct {
	SettlementID string    `json:"settlementId"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference,omitempty"`
	SettledAt    time.Time `json:"settledAt"`
}

// PaymentEvent is the post-processing fan-out payload published after the
// synchronous response is final.
type PaymentEvent struct {
	TransactionID   string    `json:"transactionId"`
	CorrelationID   string    `json:"correlationId"`
	MerchantID      string    `json:"merchantId"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	Method          string    `json:"method"`
	ProcessorType   string    `json:"processorType,omitempty"`
	Status          string    `json:"status"`
	TotalFee        int64     `json:"totalFee"`
	RiskScore       int       `json:"riskScore"`
	GenerateReceipt bool      `json:"generateReceipt"`
	OccurredAt      time.Time `json:"occurredAt"`
}
