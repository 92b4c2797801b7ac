package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	_ "github.com/lib/pq"
)

const transactionsSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id                  TEXT PRIMARY KEY,
	idempotency_key     TEXT NOT NULL DEFAULT '',
	merchant_id         TEXT NOT NULL,
	amount              BIGINT NOT NULL,
	currency            TEXT NOT NULL,
	method              TEXT NOT NULL,
	processor_type      TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	processor_reference TEXT NOT NULL DEFAULT '',
	error_code          TEXT NOT NULL DEFAULT '',
	error_message       TEXT NOT NULL DEFAULT '',
	fees                JSONB,
	settlement          JSONB,
	correlation_id      TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	completed_at        TIMESTAMPTZ,
	failed_at           TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS transactions_idempotency_key
	ON transactions (idempotency_key) WHERE idempotency_key <> '';
`

func NewPostgres() (*sql.DB, error) {
	var (
		user     = os.Getenv("DATABASE_USER")
		password = os.Getenv("DATABASE_PASSWORD")
		dbname   = os.Getenv("DATABASE_NAME")
		host     = os.Getenv("DATABASE_HOSTNAME")
		port     = os.Getenv("DATABASE_PORT")
	)

	if user == "" || password == "" || dbname == "" || host == "" || port == "" {
		return nil, errors.New("all database environment variables must be set")
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(time.Second * 15)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if _, err = db.Exec(transactionsSchema); err != nil {
		return nil, err
	}

	log.Info("connected to postgres, transactions schema ready")
	return db, nil
}
