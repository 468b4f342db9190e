package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionTier fila de la tabla de comisiones escalonadas.
// El rango es semiabierto [MinAmount, MaxAmount); MaxAmount nil = sin tope (tramo superior).
type CommissionTier struct {
	ID         string
	MinAmount  decimal.Decimal
	MaxAmount  *decimal.Decimal
	Percentage decimal.Decimal // 0..100
	TierLevel  int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contains indica si amount cae dentro del rango [MinAmount, MaxAmount).
func (t CommissionTier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.MinAmount) {
		return false
	}
	return t.MaxAmount == nil || amount.LessThan(*t.MaxAmount)
}

// Razones por las que no se asigna tramo.
const (
	TierReasonBelowBase  = "below base target"
	TierReasonNoSchedule = "no tier schedule configured"
	TierReasonNotCovered = "no tier covers amount"
	TierReasonNoTarget   = "no active target"
)

// TierResolution resultado de resolver el tramo: o bien un tramo, o bien la razón de no tenerlo.
type TierResolution struct {
	Tier   *CommissionTier
	Reason string
}

// Resolved indica si se seleccionó un tramo.
func (r TierResolution) Resolved() bool {
	return r.Tier != nil
}

// TierOf construye una resolución con tramo.
func TierOf(t CommissionTier) TierResolution {
	return TierResolution{Tier: &t}
}

// NoTier construye una resolución sin tramo con la razón indicada.
func NoTier(reason string) TierResolution {
	return TierResolution{Reason: reason}
}
