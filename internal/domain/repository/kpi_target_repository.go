package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// KpiTargetRepository puerto de lectura de metas KPI.
type KpiTargetRepository interface {
	GetByID(ctx context.Context, id string) (*entity.KpiTarget, error)
	// ListActiveByPeriod devuelve todas las metas activas del período (puede haber duplicados por usuario).
	ListActiveByPeriod(ctx context.Context, period entity.Period) ([]*entity.KpiTarget, error)
	ListActiveByUserAndPeriod(ctx context.Context, userID string, period entity.Period) ([]*entity.KpiTarget, error)
}
