package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// CommissionTierRepository puerto de lectura de la tabla de comisiones vigente.
type CommissionTierRepository interface {
	ListActive(ctx context.Context) ([]entity.CommissionTier, error)
}
