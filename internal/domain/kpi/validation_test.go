package kpi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/kpi"
)

func TestValidateTierSchedule_TablaValida(t *testing.T) {
	require.NoError(t, kpi.ValidateTierSchedule(tablaBase()))
	require.NoError(t, kpi.ValidateTierSchedule(nil), "tabla vacía no es error de validación")
}

func TestValidateTierSchedule_Errores(t *testing.T) {
	cases := map[string]func([]entity.CommissionTier) []entity.CommissionTier{
		"solapamiento": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[1].MinAmount = dec(25_000_000)
			return ts
		},
		"máximo menor o igual al mínimo": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[0].MaxAmount = decPtr(15_000_000)
			return ts
		},
		"porcentaje mayor a 100": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[2].Percentage = dec(101)
			return ts
		},
		"porcentaje negativo": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[0].Percentage = dec(-1)
			return ts
		},
		"nivel no positivo": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[1].TierLevel = 0
			return ts
		},
		"tramo intermedio sin tope": func(ts []entity.CommissionTier) []entity.CommissionTier {
			ts[1].MaxAmount = nil
			return ts
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			err := kpi.ValidateTierSchedule(mutate(tablaBase()))
			assert.ErrorIs(t, err, domain.ErrInvalidTierSchedule)
		})
	}
}

func TestValidateTierSchedule_IgnoraInactivos(t *testing.T) {
	ts := append(tablaBase(), entity.CommissionTier{MinAmount: dec(20_000_000), Percentage: dec(3), TierLevel: 9, IsActive: false})
	assert.NoError(t, kpi.ValidateTierSchedule(ts))
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, kpi.ValidateTarget(meta(0)))
	assert.ErrorIs(t, kpi.ValidateTarget(meta(-1)), domain.ErrInvalidTarget)
	assert.ErrorIs(t, kpi.ValidateTarget(nil), domain.ErrInvalidTarget)

	sinUsuario := meta(10)
	sinUsuario.UserID = ""
	assert.ErrorIs(t, kpi.ValidateTarget(sinUsuario), domain.ErrInvalidTarget)
}
