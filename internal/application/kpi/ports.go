package kpi

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con el repositorio de registros KPI
// atado a esa tx. lockKey serializa (usuario, período) entre procesos.
// Garantiza que el registro de un usuario se escribe completo o no se escribe.
type TxRunner interface {
	RunKpi(ctx context.Context, lockKey string, fn func(recordRepo repository.KpiRecordRepository) error) error
}
