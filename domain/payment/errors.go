package payment

import (
	"errors"
	"net/http"
)

// Error codes surfaced to callers. Validation and fraud rejections never create
// a Transaction; processor failures always leave a terminal FAILED record.
const (
	CodeAmountInvalid        = "AMOUNT_INVALID"
	CodeUnsupportedCurrency  = "UNSUPPORTED_CURRENCY"
	CodeUnsupportedMethod    = "UNSUPPORTED_METHOD"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeFraudDetected        = "FRAUD_DETECTED"
	CodeNoProcessorAvailable = "NO_PROCESSOR_AVAILABLE"
	CodeProcessorError       = "PROCESSOR_ERROR"
	CodeBothProcessorsFailed = "BOTH_PROCESSORS_FAILED"
	CodeProcessingError      = "PROCESSING_ERROR"
)

var (
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrTransactionNotFound     = errors.New("transaction not found")
)

type PaymentError struct {
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	return e.Code + ": " + e.Message
}

func NewPaymentError(code, message string) *PaymentError {
	return &PaymentError{Code: code, Message: message}
}

// Code extracts the caller-facing error code, falling back to the generic
// processing error for anything untyped.
func Code(err error) string {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeProcessingError
}

func HTTPStatus(code string) int {
	switch code {
	case CodeAmountInvalid, CodeUnsupportedCurrency, CodeUnsupportedMethod, CodeValidationError:
		return http.StatusUnprocessableEntity

	case CodeFraudDetected:
		return http.StatusForbidden

	case CodeNoProcessorAvailable:
		return http.StatusServiceUnavailable

	case CodeProcessorError, CodeBothProcessorsFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
