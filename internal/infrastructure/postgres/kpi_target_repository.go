package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.KpiTargetRepository = (*KpiTargetRepo)(nil)

// KpiTargetRepo implementación de KpiTargetRepository sobre PostgreSQL.
type KpiTargetRepo struct {
	q Querier
}

// NewKpiTargetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKpiTargetRepository(q Querier) *KpiTargetRepo {
	return &KpiTargetRepo{q: q}
}

const kpiTargetColumns = `id, user_id, period_year, period_month, target_amount, assigned_by, is_active, created_at, updated_at`

// GetByID obtiene una meta por ID (activa o no). nil si no existe.
func (r *KpiTargetRepo) GetByID(ctx context.Context, id string) (*entity.KpiTarget, error) {
	query := `SELECT ` + kpiTargetColumns + ` FROM kpi_targets WHERE id = $1`
	t, err := scanKpiTarget(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kpi target: %w", err)
	}
	return t, nil
}

// ListActiveByPeriod metas activas del período, ordenadas por usuario.
func (r *KpiTargetRepo) ListActiveByPeriod(ctx context.Context, period entity.Period) ([]*entity.KpiTarget, error) {
	query := `
		SELECT ` + kpiTargetColumns + `
		FROM kpi_targets
		WHERE period_year = $1 AND period_month = $2 AND is_active = true
		ORDER BY user_id, created_at`
	return r.list(ctx, query, period.Year, int(period.Month))
}

// ListActiveByUserAndPeriod metas activas del usuario en el período (se espera 0 o 1).
func (r *KpiTargetRepo) ListActiveByUserAndPeriod(ctx context.Context, userID string, period entity.Period) ([]*entity.KpiTarget, error) {
	query := `
		SELECT ` + kpiTargetColumns + `
		FROM kpi_targets
		WHERE user_id = $1 AND period_year = $2 AND period_month = $3 AND is_active = true
		ORDER BY created_at`
	return r.list(ctx, query, userID, period.Year, int(period.Month))
}

func (r *KpiTargetRepo) list(ctx context.Context, query string, args ...any) ([]*entity.KpiTarget, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kpi targets: %w", err)
	}
	defer rows.Close()
	var list []*entity.KpiTarget
	for rows.Next() {
		t, err := scanKpiTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kpi target: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanKpiTarget(row pgx.Row) (*entity.KpiTarget, error) {
	var (
		t     entity.KpiTarget
		month int
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Period.Year, &month, &t.TargetAmount,
		&t.AssignedBy, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Period.Month = time.Month(month)
	return &t, nil
}
