package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KpiRecord resultado del cálculo KPI/comisión: exactamente uno por (usuario, período).
// ApprovedAt/ApprovedBy los fija un revisor humano; el motor nunca los modifica.
type KpiRecord struct {
	ID                    string
	UserID                string
	Period                Period
	KpiTargetID           *string
	TotalRevenue          decimal.Decimal
	TargetAmount          decimal.Decimal // snapshot de la meta al momento del cálculo
	AchievementPercentage decimal.Decimal
	IsAchieved            bool
	CommissionPercentage  decimal.Decimal
	CommissionTierLevel   *int
	CommissionAmount      decimal.Decimal
	CommissionNote        string // razón cuando no aplica tramo
	TotalContractCount    int
	ApprovedAt            *time.Time
	ApprovedBy            *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SameComputedFields compara solo los campos derivados de ingresos (ignora identidad, fechas y aprobación).
func (r *KpiRecord) SameComputedFields(o *KpiRecord) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.UserID == o.UserID &&
		r.Period == o.Period &&
		equalStringPtr(r.KpiTargetID, o.KpiTargetID) &&
		r.TotalRevenue.Equal(o.TotalRevenue) &&
		r.TargetAmount.Equal(o.TargetAmount) &&
		r.AchievementPercentage.Equal(o.AchievementPercentage) &&
		r.IsAchieved == o.IsAchieved &&
		r.CommissionPercentage.Equal(o.CommissionPercentage) &&
		equalIntPtr(r.CommissionTierLevel, o.CommissionTierLevel) &&
		r.CommissionAmount.Equal(o.CommissionAmount) &&
		r.CommissionNote == o.CommissionNote &&
		r.TotalContractCount == o.TotalContractCount
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
