package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract contrato de venta atribuido a un vendedor (solo lectura para el motor).
type Contract struct {
	ID          string
	UserID      string // vendedor que creó / tiene atribuido el contrato
	Code        string
	Status      string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// PaymentTransaction pago conciliado contra un contrato.
type PaymentTransaction struct {
	ID         string
	ContractID string
	Amount     decimal.Decimal // puede ser negativo (reembolso / corrección)
	Status     string
	PaidAt     time.Time
}

// RevenueSource contrato más sus transacciones en estado conciliado.
type RevenueSource struct {
	Contract            Contract
	MatchedTransactions []PaymentTransaction
}
