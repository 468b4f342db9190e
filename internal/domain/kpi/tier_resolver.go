package kpi

import (
	"sort"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ResolveTier asigna el tramo de comisión para amount.
//
// Doble compuerta: primero hay que superar el piso del tramo base (el de menor MinAmount);
// por debajo no hay comisión aunque el monto sea positivo. Luego se busca el tramo cuyo
// rango semiabierto [min, max) contiene el monto: amount == max pertenece al tramo siguiente.
// Si ningún rango coincide pero el monto supera el piso del tramo más alto (max desactualizado),
// se asigna el tramo más alto.
func ResolveTier(amount decimal.Decimal, tiers []entity.CommissionTier) entity.TierResolution {
	sorted := sortedActive(tiers)
	if len(sorted) == 0 {
		return entity.NoTier(entity.TierReasonNoSchedule)
	}

	base := sorted[0]
	if amount.LessThan(base.MinAmount) {
		return entity.NoTier(entity.TierReasonBelowBase)
	}

	for _, t := range sorted {
		if t.Contains(amount) {
			return entity.TierOf(t)
		}
	}

	highest := sorted[len(sorted)-1]
	if amount.GreaterThanOrEqual(highest.MinAmount) {
		return entity.TierOf(highest)
	}
	// Hueco entre tramos: la validación de la tabla debería impedirlo.
	return entity.NoTier(entity.TierReasonNotCovered)
}

// sortedActive copia los tramos activos ordenados por MinAmount (desempate: TierLevel).
func sortedActive(tiers []entity.CommissionTier) []entity.CommissionTier {
	out := make([]entity.CommissionTier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].MinAmount.Equal(out[j].MinAmount) {
			return out[i].MinAmount.LessThan(out[j].MinAmount)
		}
		return out[i].TierLevel < out[j].TierLevel
	})
	return out
}
