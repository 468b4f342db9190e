package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// KpiRecordRepository puerto de persistencia de resultados KPI (uno por usuario+período).
type KpiRecordRepository interface {
	GetByUserAndPeriod(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error)
	// GetForUpdate lee la fila y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error)
	// Upsert crea o actualiza solo los campos calculados; nunca toca aprobación ni identidad.
	// Devuelve el registro persistido y si fue creado.
	Upsert(ctx context.Context, record *entity.KpiRecord) (*entity.KpiRecord, bool, error)
}
