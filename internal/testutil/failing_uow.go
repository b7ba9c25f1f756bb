package testutil

import (
	"context"
	"database/sql"
	"sync"

	"github.com/bsolutions/shes/internal/db"
)

// FailOnNthExecUoW runs transactions through db.SQLUnitOfWork but makes the
// FailOn-th write inside each transaction return Err. Counting starts at 1
// and reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int
	Err    error

	mu     sync.Mutex
	failed string
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failOnNthExec{DBTX: tx, uow: u})
	})
}

// FailedStatement returns the write that was rejected, if any.
func (u *FailOnNthExecUoW) FailedStatement() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.failed
}

type failOnNthExec struct {
	db.DBTX
	uow    *FailOnNthExecUoW
	writes int
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.uow.FailOn {
		f.uow.mu.Lock()
		f.uow.failed = query
		f.uow.mu.Unlock()
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
