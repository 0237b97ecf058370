package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "bloodbank/pkg/domain-errors"
	pkgtx "bloodbank/pkg/platform/tx"
)

const defaultBankTxTimeout = 5 * time.Second

// bankPostgresTx runs one Donate/Request unit of work inside a serializable
// SQL transaction. Serializable isolation stands in for the per-blood-type
// lock: two concurrent requests racing for the same last unit cannot both
// commit. The transaction rides on context so the stores join it.
type bankPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newBankPostgresTx(db *sql.DB) *bankPostgresTx {
	return &bankPostgresTx{db: db}
}

func (t *bankPostgresTx) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultBankTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(pkgtx.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
