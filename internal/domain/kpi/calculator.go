package kpi

import (
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// displayPlaces precisión de porcentajes almacenados/mostrados.
const displayPlaces = 2

var hundred = decimal.NewFromInt(100)

// CalculateAchievement porcentaje de cumplimiento y si la meta se alcanzó.
// Meta cero con ingreso positivo = 100 % (sin división por cero); ambos cero = 0 %.
func CalculateAchievement(revenue, target decimal.Decimal) (decimal.Decimal, bool) {
	achieved := revenue.GreaterThanOrEqual(target)
	switch {
	case target.GreaterThan(decimal.Zero):
		return revenue.Div(target).Mul(hundred).Round(displayPlaces), achieved
	case revenue.GreaterThan(decimal.Zero):
		return hundred.Round(displayPlaces), achieved
	default:
		return decimal.Zero, achieved
	}
}

// CalculateCommission monto de comisión: revenue * pct / 100, o cero sin tramo.
func CalculateCommission(revenue decimal.Decimal, res entity.TierResolution) decimal.Decimal {
	if !res.Resolved() {
		return decimal.Zero
	}
	return revenue.Mul(res.Tier.Percentage).Div(hundred)
}

// CalculateRecord combina meta, ingreso agregado y tramo en un KpiRecord (sin I/O).
// target puede ser nil cuando el usuario no tiene meta activa: la meta se toma como cero
// y no se paga comisión, sin importar el tramo recibido.
func CalculateRecord(
	userID string,
	period entity.Period,
	target *entity.KpiTarget,
	revenue RevenueTotal,
	res entity.TierResolution,
) *entity.KpiRecord {
	targetAmount := decimal.Zero
	var targetID *string
	if target != nil {
		targetAmount = target.TargetAmount
		id := target.ID
		targetID = &id
	} else {
		res = entity.NoTier(entity.TierReasonNoTarget)
	}

	achievement, achieved := CalculateAchievement(revenue.Amount, targetAmount)

	rec := &entity.KpiRecord{
		UserID:                userID,
		Period:                period,
		KpiTargetID:           targetID,
		TotalRevenue:          revenue.Amount,
		TargetAmount:          targetAmount,
		AchievementPercentage: achievement,
		IsAchieved:            achieved,
		CommissionPercentage:  decimal.Zero,
		CommissionAmount:      CalculateCommission(revenue.Amount, res),
		TotalContractCount:    revenue.ContractCount,
	}
	if res.Resolved() {
		level := res.Tier.TierLevel
		rec.CommissionTierLevel = &level
		rec.CommissionPercentage = res.Tier.Percentage.Round(displayPlaces)
	} else {
		rec.CommissionNote = res.Reason
	}
	return rec
}
