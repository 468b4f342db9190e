package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// RevenueSourceQuery filtros para cargar contratos de un vendedor en un período.
type RevenueSourceQuery struct {
	UserID             string
	Period             entity.Period
	RecognizedStatuses []string // estados de contrato que cuentan como venta
	MatchedStatus      string   // estado de transacción considerado conciliado
}

// RevenueSourceRepository puerto de lectura de contratos + transacciones conciliadas.
type RevenueSourceRepository interface {
	ListByUserAndPeriod(ctx context.Context, q RevenueSourceQuery) ([]entity.RevenueSource, error)
}
