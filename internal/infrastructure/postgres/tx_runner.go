package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// Ensure TxRunner implements kpi.TxRunner.
var _ kpi.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunKpi inicia una transacción, toma un advisory lock sobre lockKey (liberado al cerrar la tx),
// ejecuta fn con el repositorio de registros atado a la tx y hace Commit o Rollback.
func (r *TxRunner) RunKpi(ctx context.Context, lockKey string, fn func(recordRepo repository.KpiRecordRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("advisory lock %s: %w", lockKey, err)
	}

	if err := fn(NewKpiRecordRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
