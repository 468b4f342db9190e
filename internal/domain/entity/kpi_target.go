package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KpiTarget meta de ventas asignada a un vendedor para un período.
type KpiTarget struct {
	ID           string
	UserID       string
	Period       Period
	TargetAmount decimal.Decimal
	AssignedBy   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
