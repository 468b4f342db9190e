package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.KpiRecordRepository = (*KpiRecordRepo)(nil)

// KpiRecordRepo persistencia de kpi_records (UNIQUE user_id, period_year, period_month).
type KpiRecordRepo struct {
	q Querier
}

// NewKpiRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKpiRecordRepository(q Querier) *KpiRecordRepo {
	return &KpiRecordRepo{q: q}
}

const kpiRecordColumns = `
	id, user_id, period_year, period_month, kpi_target_id, total_revenue, target_amount,
	achievement_percentage, is_achieved, commission_percentage, commission_tier_level,
	commission_amount, commission_note, total_contract_count, approved_at, approved_by,
	created_at, updated_at`

// GetByUserAndPeriod obtiene el registro de (usuario, período). nil si no existe.
func (r *KpiRecordRepo) GetByUserAndPeriod(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error) {
	query := `SELECT ` + kpiRecordColumns + `
		FROM kpi_records WHERE user_id = $1 AND period_year = $2 AND period_month = $3`
	return r.get(ctx, query, userID, period)
}

// GetForUpdate igual que GetByUserAndPeriod pero bloquea la fila (SELECT FOR UPDATE).
// Solo tiene efecto dentro de una transacción.
func (r *KpiRecordRepo) GetForUpdate(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error) {
	query := `SELECT ` + kpiRecordColumns + `
		FROM kpi_records WHERE user_id = $1 AND period_year = $2 AND period_month = $3
		FOR UPDATE`
	return r.get(ctx, query, userID, period)
}

func (r *KpiRecordRepo) get(ctx context.Context, query, userID string, period entity.Period) (*entity.KpiRecord, error) {
	rec, err := scanKpiRecord(r.q.QueryRow(ctx, query, userID, period.Year, int(period.Month)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kpi record: %w", err)
	}
	return rec, nil
}

// Upsert inserta el registro o, si ya existe (usuario, período), sobrescribe solo los campos
// derivados de ingresos. id, created_at, approved_at y approved_by nunca se modifican.
func (r *KpiRecordRepo) Upsert(ctx context.Context, record *entity.KpiRecord) (*entity.KpiRecord, bool, error) {
	query := `
		INSERT INTO kpi_records (
			id, user_id, period_year, period_month, kpi_target_id, total_revenue, target_amount,
			achievement_percentage, is_achieved, commission_percentage, commission_tier_level,
			commission_amount, commission_note, total_contract_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		ON CONFLICT (user_id, period_year, period_month) DO UPDATE SET
			kpi_target_id          = EXCLUDED.kpi_target_id,
			total_revenue          = EXCLUDED.total_revenue,
			target_amount          = EXCLUDED.target_amount,
			achievement_percentage = EXCLUDED.achievement_percentage,
			is_achieved            = EXCLUDED.is_achieved,
			commission_percentage  = EXCLUDED.commission_percentage,
			commission_tier_level  = EXCLUDED.commission_tier_level,
			commission_amount      = EXCLUDED.commission_amount,
			commission_note        = EXCLUDED.commission_note,
			total_contract_count   = EXCLUDED.total_contract_count,
			updated_at             = now()
		RETURNING id, approved_at, approved_by, created_at, updated_at, (xmax = 0) AS inserted`

	saved := *record
	var inserted bool
	err := r.q.QueryRow(ctx, query,
		uuid.New().String(), record.UserID, record.Period.Year, int(record.Period.Month), record.KpiTargetID,
		record.TotalRevenue, record.TargetAmount, record.AchievementPercentage, record.IsAchieved,
		record.CommissionPercentage, record.CommissionTierLevel, record.CommissionAmount,
		record.CommissionNote, record.TotalContractCount,
	).Scan(&saved.ID, &saved.ApprovedAt, &saved.ApprovedBy, &saved.CreatedAt, &saved.UpdatedAt, &inserted)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, domain.ErrDuplicate
		}
		return nil, false, fmt.Errorf("upsert kpi record: %w", err)
	}
	return &saved, inserted, nil
}

func scanKpiRecord(row pgx.Row) (*entity.KpiRecord, error) {
	var (
		rec   entity.KpiRecord
		month int
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Period.Year, &month, &rec.KpiTargetID, &rec.TotalRevenue,
		&rec.TargetAmount, &rec.AchievementPercentage, &rec.IsAchieved, &rec.CommissionPercentage,
		&rec.CommissionTierLevel, &rec.CommissionAmount, &rec.CommissionNote, &rec.TotalContractCount,
		&rec.ApprovedAt, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Period.Month = time.Month(month)
	return &rec, nil
}
