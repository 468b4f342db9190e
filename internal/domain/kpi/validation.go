package kpi

import (
	"fmt"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ValidateTarget valida una meta al cargarla (los calculadores asumen entrada bien formada).
func ValidateTarget(t *entity.KpiTarget) error {
	if t == nil {
		return domain.ErrInvalidTarget
	}
	if t.UserID == "" {
		return fmt.Errorf("%w: meta %s sin usuario", domain.ErrInvalidTarget, t.ID)
	}
	if err := t.Period.Validate(); err != nil {
		return fmt.Errorf("%w: meta %s: %v", domain.ErrInvalidTarget, t.ID, err)
	}
	if t.TargetAmount.IsNegative() {
		return fmt.Errorf("%w: meta %s con monto negativo %s", domain.ErrInvalidTarget, t.ID, t.TargetAmount)
	}
	return nil
}

// ValidateTierSchedule valida la tabla activa: rangos bien formados, porcentajes 0..100,
// niveles positivos y sin solapamientos. Una tabla vacía es válida (se reporta como advertencia).
func ValidateTierSchedule(tiers []entity.CommissionTier) error {
	sorted := sortedActive(tiers)
	for i, t := range sorted {
		if t.MinAmount.IsNegative() {
			return fmt.Errorf("%w: tramo %d con mínimo negativo", domain.ErrInvalidTierSchedule, t.TierLevel)
		}
		if t.MaxAmount != nil && t.MaxAmount.LessThanOrEqual(t.MinAmount) {
			return fmt.Errorf("%w: tramo %d con máximo %s <= mínimo %s",
				domain.ErrInvalidTierSchedule, t.TierLevel, t.MaxAmount, t.MinAmount)
		}
		if t.Percentage.IsNegative() || t.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: tramo %d con porcentaje %s fuera de 0..100",
				domain.ErrInvalidTierSchedule, t.TierLevel, t.Percentage)
		}
		if t.TierLevel <= 0 {
			return fmt.Errorf("%w: nivel de tramo %d no positivo", domain.ErrInvalidTierSchedule, t.TierLevel)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MaxAmount == nil || prev.MaxAmount.GreaterThan(t.MinAmount) {
			return fmt.Errorf("%w: tramos %d y %d se solapan",
				domain.ErrInvalidTierSchedule, prev.TierLevel, t.TierLevel)
		}
	}
	return nil
}

// TotalCommission suma de comisiones de un conjunto de registros (reportes de lote).
func TotalCommission(records []*entity.KpiRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r != nil {
			total = total.Add(r.CommissionAmount)
		}
	}
	return total
}
