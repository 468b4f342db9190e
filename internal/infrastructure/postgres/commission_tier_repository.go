package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CommissionTierRepository = (*CommissionTierRepo)(nil)

// CommissionTierRepo lectura de la tabla de comisiones vigente.
type CommissionTierRepo struct {
	q Querier
}

// NewCommissionTierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCommissionTierRepository(q Querier) *CommissionTierRepo {
	return &CommissionTierRepo{q: q}
}

// ListActive devuelve los tramos activos ordenados por monto mínimo.
func (r *CommissionTierRepo) ListActive(ctx context.Context) ([]entity.CommissionTier, error) {
	query := `
		SELECT id, min_amount, max_amount, percentage, tier_level, is_active, created_at, updated_at
		FROM commission_tiers
		WHERE is_active = true
		ORDER BY min_amount, tier_level`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list commission tiers: %w", err)
	}
	defer rows.Close()

	var tiers []entity.CommissionTier
	for rows.Next() {
		var (
			t      entity.CommissionTier
			maxAmt decimal.NullDecimal
		)
		if err := rows.Scan(&t.ID, &t.MinAmount, &maxAmt, &t.Percentage, &t.TierLevel,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan commission tier: %w", err)
		}
		if maxAmt.Valid {
			v := maxAmt.Decimal
			t.MaxAmount = &v
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}
