package kpi

import (
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchState estado de una corrida por período: Idle → Running → {Completed, PartiallyFailed}.
// Failed solo se usa cuando no se pudo ni siquiera cargar la lista de metas.
type BatchState string

const (
	BatchIdle            BatchState = "IDLE"
	BatchRunning         BatchState = "RUNNING"
	BatchCompleted       BatchState = "COMPLETED"
	BatchPartiallyFailed BatchState = "PARTIALLY_FAILED"
	BatchFailed          BatchState = "FAILED"
)

// RunResult resultado del pipeline de un usuario.
type RunResult struct {
	Record   *entity.KpiRecord
	Created  bool
	Warnings []string
}

// UserFailure falla aislada de un usuario dentro de un lote.
type UserFailure struct {
	UserID   string
	TargetID string
	Err      error
}

// BatchSummary resumen de RunForPeriod: cada meta termina en éxito o en falla registrada.
type BatchSummary struct {
	Period          entity.Period
	State           BatchState
	Succeeded       int
	Failed          []UserFailure
	Warnings        []string
	TotalCommission decimal.Decimal
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Total metas procesadas (éxitos + fallas).
func (s *BatchSummary) Total() int {
	return s.Succeeded + len(s.Failed)
}
