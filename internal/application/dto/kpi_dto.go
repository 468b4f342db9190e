package dto

import (
	"time"

	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// RecalculateUserRequest body de POST /api/kpi/recalculate/user.
type RecalculateUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Period string `json:"period" validate:"required,datetime=2006-01"` // YYYY-MM
}

// RecalculatePeriodRequest body de POST /api/kpi/recalculate/period.
type RecalculatePeriodRequest struct {
	Period string `json:"period" validate:"required,datetime=2006-01"`
}

// KpiRecordQuery parámetros de GET /api/kpi/records.
type KpiRecordQuery struct {
	UserID string `query:"user_id" validate:"required"`
	Period string `query:"period" validate:"required,datetime=2006-01"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// KpiRecordDTO registro KPI/comisión de un vendedor en un período.
type KpiRecordDTO struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	Period                string          `json:"period"`
	KpiTargetID           *string         `json:"kpi_target_id"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TargetAmount          decimal.Decimal `json:"target_amount"`
	AchievementPercentage decimal.Decimal `json:"achievement_percentage"`
	IsAchieved            bool            `json:"is_achieved"`
	CommissionPercentage  decimal.Decimal `json:"commission_percentage"`
	CommissionTierLevel   *int            `json:"commission_tier_level"`
	CommissionAmount      decimal.Decimal `json:"commission_amount"`
	CommissionNote        string          `json:"commission_note,omitempty"`
	TotalContractCount    int             `json:"total_contract_count"`
	ApprovedAt            *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy            *string         `json:"approved_by,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// RunResultDTO resultado de un recálculo individual.
type RunResultDTO struct {
	Record   KpiRecordDTO `json:"record"`
	Created  bool         `json:"created"`
	Warnings []string     `json:"warnings,omitempty"`
}

// UserFailureDTO falla de un usuario dentro de un lote.
type UserFailureDTO struct {
	UserID   string `json:"user_id"`
	TargetID string `json:"target_id,omitempty"`
	Error    string `json:"error"`
}

// BatchSummaryDTO resumen de un recálculo por período.
type BatchSummaryDTO struct {
	Period          string           `json:"period"`
	State           string           `json:"state"`
	Total           int              `json:"total"`
	Succeeded       int              `json:"succeeded"`
	Failed          []UserFailureDTO `json:"failed"`
	Warnings        []string         `json:"warnings,omitempty"`
	TotalCommission decimal.Decimal  `json:"total_commission"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	ElapsedMs       int64            `json:"elapsed_ms"`
}

// ── Mappers ───────────────────────────────────────────────────────────────────

// ToKpiRecordDTO convierte la entidad en su representación JSON.
func ToKpiRecordDTO(r *entity.KpiRecord) KpiRecordDTO {
	if r == nil {
		return KpiRecordDTO{}
	}
	return KpiRecordDTO{
		ID:                    r.ID,
		UserID:                r.UserID,
		Period:                r.Period.String(),
		KpiTargetID:           r.KpiTargetID,
		TotalRevenue:          r.TotalRevenue,
		TargetAmount:          r.TargetAmount,
		AchievementPercentage: r.AchievementPercentage,
		IsAchieved:            r.IsAchieved,
		CommissionPercentage:  r.CommissionPercentage,
		CommissionTierLevel:   r.CommissionTierLevel,
		CommissionAmount:      r.CommissionAmount,
		CommissionNote:        r.CommissionNote,
		TotalContractCount:    r.TotalContractCount,
		ApprovedAt:            r.ApprovedAt,
		ApprovedBy:            r.ApprovedBy,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

// ToRunResultDTO convierte el resultado del caso de uso.
func ToRunResultDTO(res *kpi.RunResult) RunResultDTO {
	return RunResultDTO{
		Record:   ToKpiRecordDTO(res.Record),
		Created:  res.Created,
		Warnings: res.Warnings,
	}
}

// ToBatchSummaryDTO convierte el resumen de lote; Failed nunca es null en el JSON.
func ToBatchSummaryDTO(s *kpi.BatchSummary) BatchSummaryDTO {
	failed := make([]UserFailureDTO, 0, len(s.Failed))
	for _, f := range s.Failed {
		failed = append(failed, UserFailureDTO{UserID: f.UserID, TargetID: f.TargetID, Error: f.Err.Error()})
	}
	return BatchSummaryDTO{
		Period:          s.Period.String(),
		State:           string(s.State),
		Total:           s.Total(),
		Succeeded:       s.Succeeded,
		Failed:          failed,
		Warnings:        s.Warnings,
		TotalCommission: s.TotalCommission,
		StartedAt:       s.StartedAt,
		FinishedAt:      s.FinishedAt,
		ElapsedMs:       s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	}
}
