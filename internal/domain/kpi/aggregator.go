package kpi

import (
	"strings"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RevenuePolicy parámetros de negocio para reconocer ingresos.
// RecognizedStatuses se aplica al filtrar contratos en la consulta; PartialStatuses
// y PartialRatio definen el aporte de contratos sin transacciones registradas.
type RevenuePolicy struct {
	RecognizedStatuses []string
	PartialStatuses    []string
	PartialRatio       decimal.Decimal
}

// DefaultRevenuePolicy política vigente: depósito cuenta al 50 %.
func DefaultRevenuePolicy() RevenuePolicy {
	return RevenuePolicy{
		RecognizedStatuses: []string{"deposit", "paid", "completed", "signed", "active"},
		PartialStatuses:    []string{"deposit"},
		PartialRatio:       decimal.NewFromFloat(0.5),
	}
}

// IsPartial indica si el estado del contrato corresponde a un pago parcial / depósito.
func (p RevenuePolicy) IsPartial(status string) bool {
	for _, s := range p.PartialStatuses {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(status)) {
			return true
		}
	}
	return false
}

// RevenueTotal ingreso agregado de un vendedor en un período.
// Excluded cuenta los contratos recibidos que no se atribuyen al vendedor/período;
// distinto de cero indica un filtro defectuoso en la consulta de origen.
type RevenueTotal struct {
	Amount        decimal.Decimal
	ContractCount int
	Excluded      int
}

// RevenueAggregator suma el ingreso realizado de un vendedor a partir de contratos y pagos.
type RevenueAggregator struct {
	policy RevenuePolicy
}

// NewRevenueAggregator construye el agregador con la política indicada.
func NewRevenueAggregator(policy RevenuePolicy) *RevenueAggregator {
	return &RevenueAggregator{policy: policy}
}

// Policy devuelve la política configurada.
func (a *RevenueAggregator) Policy() RevenuePolicy {
	return a.policy
}

// Aggregate suma el aporte de cada contrato. Los contratos ya vienen filtrados por
// vendedor, período y estado reconocido; como resguardo se ignoran los que declaran
// otro vendedor o una fecha fuera del período, y se cuentan en Excluded.
// Lista vacía => cero ingreso y cero contratos (no es error).
func (a *RevenueAggregator) Aggregate(userID string, period entity.Period, sources []entity.RevenueSource) RevenueTotal {
	total := RevenueTotal{Amount: decimal.Zero}
	for _, src := range sources {
		if !attributedTo(src.Contract, userID, period) {
			total.Excluded++
			continue
		}
		total.Amount = total.Amount.Add(a.Contribution(src))
		total.ContractCount++
	}
	return total
}

func attributedTo(c entity.Contract, userID string, period entity.Period) bool {
	if c.UserID != "" && c.UserID != userID {
		return false
	}
	if c.CreatedAt.IsZero() {
		return true
	}
	return !c.CreatedAt.Before(period.Start()) && c.CreatedAt.Before(period.End())
}

// Contribution aporte de un contrato:
//  1. con transacciones conciliadas: suma de sus montos (sin recortar negativos);
//  2. sin transacciones: total * PartialRatio si el estado es parcial, si no el total.
func (a *RevenueAggregator) Contribution(src entity.RevenueSource) decimal.Decimal {
	if len(src.MatchedTransactions) > 0 {
		sum := decimal.Zero
		for _, tx := range src.MatchedTransactions {
			sum = sum.Add(tx.Amount)
		}
		return sum
	}
	if a.policy.IsPartial(src.Contract.Status) {
		return src.Contract.TotalAmount.Mul(a.policy.PartialRatio)
	}
	return src.Contract.TotalAmount
}
