package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
)

// Schema is the ledger DDL, applied in order by Migrate.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		account_number VARCHAR(20) NOT NULL UNIQUE,
		type VARCHAR(16) NOT NULL,
		balance NUMERIC(19,2) NOT NULL DEFAULT 0,
		available_balance NUMERIC(19,2) NOT NULL DEFAULT 0,
		interest_rate NUMERIC(9,6),
		status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
		user_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS accounts_status_type_idx ON accounts (status, type);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		reference VARCHAR(32) NOT NULL UNIQUE,
		type VARCHAR(16) NOT NULL,
		amount NUMERIC(19,2) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL,
		transaction_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		scheduled_date TIMESTAMPTZ,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		target_account_id BIGINT REFERENCES accounts(id),
		CHECK (amount > 0 OR type = 'ADJUSTMENT')
	);`,
	`CREATE INDEX IF NOT EXISTS transactions_due_idx ON transactions (status, scheduled_date);`,
	`CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions (account_id, status);`,
	`CREATE INDEX IF NOT EXISTS transactions_target_idx ON transactions (target_account_id, status);`,
}

// Migrate applies Schema to db.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Log.Errorw("migration failed", "statement", stmt, "error", err)
			return err
		}
	}
	logger.Log.Infow("ledger schema applied", "statements", len(Schema))
	return nil
}
