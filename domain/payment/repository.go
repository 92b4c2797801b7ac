package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
)

// TransactionUpdate is an atomic field-level update. Nil fields are left
// untouched; the repository writes all set fields in one statement.
type TransactionUpdate struct {
	Status             *Status
	ProcessorType      *string
	ProcessorReference *string
	ErrorCode          *string
	ErrorMessage       *string
	Fees               *FeeBreakdown
	Settlement         *SettlementInfo
	CompletedAt        *time.Time
	FailedAt           *time.Time
}

type IRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, id string, update TransactionUpdate) error
	FindByID(ctx context.Context, id string) (*Transaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Transaction, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) IRepository {
	return &repository{db}
}

const transactionColumns = `id, idempotency_key, merchant_id, amount, currency, method,
	processor_type, status, processor_reference, error_code, error_message, fees,
	settlement, correlation_id, created_at, completed_at, failed_at`

func (r *repository) Create(ctx context.Context, tx *Transaction) error {
	fees, err := marshalJSONB(tx.Fees)
	if err != nil {
		return err
	}
	settlement, err := marshalJSONB(tx.Settlement)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		tx.ID, tx.IdempotencyKey, tx.MerchantID, tx.Amount, tx.Currency, tx.Method,
		tx.ProcessorType, tx.Status, tx.ProcessorReference, tx.ErrorCode, tx.ErrorMessage,
		fees, settlement, tx.CorrelationID, tx.CreatedAt, tx.CompletedAt, tx.FailedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, id string, update TransactionUpdate) error {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.ProcessorType != nil {
		add("processor_type", *update.ProcessorType)
	}
	if update.ProcessorReference != nil {
		add("processor_reference", *update.ProcessorReference)
	}
	if update.ErrorCode != nil {
		add("error_code", *update.ErrorCode)
	}
	if update.ErrorMessage != nil {
		add("error_message", *update.ErrorMessage)
	}
	if update.Fees != nil {
		fees, err := marshalJSONB(update.Fees)
		if err != nil {
			return err
		}
		add("fees", fees)
	}
	if update.Settlement != nil {
		settlement, err := marshalJSONB(update.Settlement)
		if err != nil {
			return err
		}
		add("settlement", settlement)
	}
	if update.CompletedAt != nil {
		add("completed_at", *update.CompletedAt)
	}
	if update.FailedAt != nil {
		add("failed_at", *update.FailedAt)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)
	return scanTransaction(row)
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, key string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE idempotency_key = $1", key)
	return scanTransaction(row)
}

func scanTransaction(row *sql.Row) (*Transaction, error) {
	var (
		tx         Transaction
		fees       []byte
		settlement []byte
	)
	err := row.Scan(
		&tx.ID, &tx.IdempotencyKey, &tx.MerchantID, &tx.Amount, &tx.Currency, &tx.Method,
		&tx.ProcessorType, &tx.Status, &tx.ProcessorReference, &tx.ErrorCode, &tx.ErrorMessage,
		&fees, &settlement, &tx.CorrelationID, &tx.CreatedAt, &tx.CompletedAt, &tx.FailedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(fees) > 0 {
		var breakdown FeeBreakdown
		if err = json.Unmarshal(fees, &breakdown); err != nil {
			return nil, err
		}
		tx.Fees = &breakdown
	}
	if len(settlement) > 0 {
		var info SettlementInfo
		if err = json.Unmarshal(settlement, &info); err != nil {
			return nil, err
		}
		tx.Settlement = &info
	}
	return &tx, nil
}

func marshalJSONB[T any](value *T) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}
