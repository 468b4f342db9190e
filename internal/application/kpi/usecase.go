// Package kpi orquesta el cálculo de KPI de ventas y comisiones escalonadas:
// agregación de ingresos, resolución de tramo, cálculo de cumplimiento y upsert
// idempotente de un KpiRecord por (usuario, período).
package kpi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	domainkpi "github.com/jhoicas/Comisiones-api/internal/domain/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Config parámetros del motor.
type Config struct {
	Workers       int    // paralelismo de RunForPeriod
	MatchedStatus string // estado de transacción considerado conciliado
	Policy        domainkpi.RevenuePolicy
}

// KpiUseCase pipeline por usuario y orquestador de lotes.
//
// Solo el paso de persistencia hace I/O de escritura; agregación, tramo y cálculo son
// funciones puras. Cada usuario se escribe en su propia transacción.
type KpiUseCase struct {
	targetRepo  repository.KpiTargetRepository
	tierRepo    repository.CommissionTierRepository
	revenueRepo repository.RevenueSourceRepository
	recordRepo  repository.KpiRecordRepository
	txRunner    TxRunner
	aggregator  *domainkpi.RevenueAggregator
	cfg         Config
	log         *logger.Logger
	locks       *keyLocker

	mu    sync.Mutex
	state BatchState
}

// NewKpiUseCase construye el caso de uso.
func NewKpiUseCase(
	targetRepo repository.KpiTargetRepository,
	tierRepo repository.CommissionTierRepository,
	revenueRepo repository.RevenueSourceRepository,
	recordRepo repository.KpiRecordRepository,
	txRunner TxRunner,
	cfg Config,
	log *logger.Logger,
) *KpiUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MatchedStatus == "" {
		cfg.MatchedStatus = "matched"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KpiUseCase{
		targetRepo:  targetRepo,
		tierRepo:    tierRepo,
		revenueRepo: revenueRepo,
		recordRepo:  recordRepo,
		txRunner:    txRunner,
		aggregator:  domainkpi.NewRevenueAggregator(cfg.Policy),
		cfg:         cfg,
		log:         log,
		locks:       newKeyLocker(),
		state:       BatchIdle,
	}
}

// State estado de la última corrida por período.
func (uc *KpiUseCase) State() BatchState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state
}

func (uc *KpiUseCase) setState(s BatchState) {
	uc.mu.Lock()
	uc.state = s
	uc.mu.Unlock()
}

// GetRecord devuelve el registro almacenado de (usuario, período) o domain.ErrNotFound.
func (uc *KpiUseCase) GetRecord(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error) {
	if userID == "" || period.Validate() != nil {
		return nil, domain.ErrInvalidInput
	}
	rec, err := uc.recordRepo.GetByUserAndPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// RunForUser ejecuta el pipeline completo para un usuario y período.
// Ante cualquier error lo registra y lo devuelve; no reintenta.
func (uc *KpiUseCase) RunForUser(ctx context.Context, userID string, period entity.Period) (*RunResult, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	targets, err := uc.targetRepo.ListActiveByUserAndPeriod(ctx, userID, period)
	if err != nil {
		uc.logFailure(userID, period, err)
		return nil, fmt.Errorf("cargar metas: %w", err)
	}
	target, warnings, err := selectTarget(userID, period, targets)
	if err != nil {
		uc.logFailure(userID, period, err)
		return nil, err
	}

	tiers, tierWarnings, err := uc.loadTiers(ctx)
	if err != nil {
		uc.logFailure(userID, period, err)
		return nil, err
	}
	warnings = append(warnings, tierWarnings...)

	res, err := uc.run(ctx, userID, period, target, tiers)
	if err != nil {
		uc.logFailure(userID, period, err)
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	uc.logSuccess(res)
	return res, nil
}

// RunByTargetID resuelve (usuario, período) desde una meta y delega en RunForUser.
// Se usa al crear o editar una meta para recalcular de inmediato.
func (uc *KpiUseCase) RunByTargetID(ctx context.Context, targetID string) (*RunResult, error) {
	if targetID == "" {
		return nil, domain.ErrInvalidInput
	}
	target, err := uc.targetRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("cargar meta %s: %w", targetID, err)
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	return uc.RunForUser(ctx, target.UserID, target.Period)
}

// RunForPeriod recalcula todas las metas activas del período aislando fallas por usuario.
// Los usuarios se procesan con paralelismo acotado (Config.Workers). Si ctx se cancela,
// los usuarios aún no iniciados se registran como fallidos sin efectos; los que ya están
// persistiendo terminan su escritura.
func (uc *KpiUseCase) RunForPeriod(ctx context.Context, period entity.Period) (*BatchSummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	summary := &BatchSummary{Period: period, State: BatchRunning, StartedAt: time.Now(), TotalCommission: decimal.Zero}
	uc.setState(BatchRunning)

	targets, err := uc.targetRepo.ListActiveByPeriod(ctx, period)
	if err != nil {
		uc.setState(BatchFailed)
		uc.log.Error().Err(err).Str("period", period.String()).Msg("kpi: no se pudieron cargar las metas del período")
		return nil, fmt.Errorf("cargar metas del período %s: %w", period, err)
	}

	tiers, tierWarnings, tierErr := uc.loadTiers(ctx)
	summary.Warnings = append(summary.Warnings, tierWarnings...)

	type job struct {
		target *entity.KpiTarget
	}
	type outcome struct {
		result  *RunResult
		failure *UserFailure
	}

	var failures []UserFailure
	var jobs []job
	for _, group := range groupByUser(targets) {
		userID := group[0].UserID
		switch {
		case tierErr != nil:
			for _, t := range group {
				failures = append(failures, UserFailure{UserID: userID, TargetID: t.ID, Err: tierErr})
			}
		case len(group) > 1:
			for _, t := range group {
				failures = append(failures, UserFailure{UserID: userID, TargetID: t.ID, Err: domain.ErrAmbiguousTarget})
			}
		default:
			if vErr := domainkpi.ValidateTarget(group[0]); vErr != nil {
				failures = append(failures, UserFailure{UserID: userID, TargetID: group[0].ID, Err: vErr})
				continue
			}
			jobs = append(jobs, job{target: group[0]})
		}
	}

	outcomes := make([]outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(uc.cfg.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			t := j.target
			if err := ctx.Err(); err != nil {
				outcomes[i].failure = &UserFailure{UserID: t.UserID, TargetID: t.ID, Err: fmt.Errorf("no iniciado: %w", err)}
				return nil
			}
			res, err := uc.run(ctx, t.UserID, period, t, tiers)
			if err != nil {
				uc.logFailure(t.UserID, period, err)
				outcomes[i].failure = &UserFailure{UserID: t.UserID, TargetID: t.ID, Err: err}
				return nil
			}
			uc.logSuccess(res)
			outcomes[i].result = res
			return nil
		})
	}
	_ = g.Wait()

	var records []*entity.KpiRecord
	for _, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		summary.Succeeded++
		summary.Warnings = append(summary.Warnings, o.result.Warnings...)
		records = append(records, o.result.Record)
	}
	summary.Failed = failures
	summary.TotalCommission = domainkpi.TotalCommission(records)
	summary.FinishedAt = time.Now()
	summary.State = BatchCompleted
	if len(failures) > 0 {
		summary.State = BatchPartiallyFailed
	}
	uc.setState(summary.State)

	uc.log.Info().
		Str("period", period.String()).
		Str("state", string(summary.State)).
		Int("targets", len(targets)).
		Int("succeeded", summary.Succeeded).
		Int("failed", len(summary.Failed)).
		Str("total_commission", summary.TotalCommission.StringFixed(2)).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("kpi: lote del período finalizado")
	return summary, nil
}

// run pipeline de un usuario con meta y tabla ya validadas.
func (uc *KpiUseCase) run(
	ctx context.Context,
	userID string,
	period entity.Period,
	target *entity.KpiTarget,
	tiers []entity.CommissionTier,
) (*RunResult, error) {
	key := period.Key(userID)
	unlock := uc.locks.Lock(key)
	defer unlock()

	sources, err := uc.revenueRepo.ListByUserAndPeriod(ctx, repository.RevenueSourceQuery{
		UserID:             userID,
		Period:             period,
		RecognizedStatuses: uc.cfg.Policy.RecognizedStatuses,
		MatchedStatus:      uc.cfg.MatchedStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("cargar contratos: %w", err)
	}

	total := uc.aggregator.Aggregate(userID, period, sources)
	resolution := entity.NoTier(entity.TierReasonNoTarget)
	if target != nil {
		resolution = domainkpi.ResolveTier(total.Amount, tiers)
	}
	record := domainkpi.CalculateRecord(userID, period, target, total, resolution)

	res := &RunResult{}
	if target == nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("usuario %s sin meta activa en %s", userID, period))
	}
	if total.Excluded > 0 {
		uc.log.Warn().
			Str("user_id", userID).
			Str("period", period.String()).
			Int("excluded", total.Excluded).
			Msg("kpi: contratos de otro vendedor o fuera del período descartados")
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d contratos descartados: no pertenecen a %s en %s", total.Excluded, userID, period))
	}

	// Una vez iniciada la persistencia no se interrumpe: el registro se escribe completo.
	persistCtx := context.WithoutCancel(ctx)
	err = uc.txRunner.RunKpi(persistCtx, key, func(recordRepo repository.KpiRecordRepository) error {
		if _, err := recordRepo.GetForUpdate(persistCtx, userID, period); err != nil {
			return err
		}
		saved, created, err := recordRepo.Upsert(persistCtx, record)
		if err != nil {
			return err
		}
		res.Record = saved
		res.Created = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("guardar registro kpi: %w", err)
	}
	return res, nil
}

// loadTiers carga y valida la tabla activa. Tabla vacía = advertencia (sin comisión), no error.
func (uc *KpiUseCase) loadTiers(ctx context.Context) ([]entity.CommissionTier, []string, error) {
	tiers, err := uc.tierRepo.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar tabla de comisiones: %w", err)
	}
	if err := domainkpi.ValidateTierSchedule(tiers); err != nil {
		return nil, nil, err
	}
	if len(tiers) == 0 {
		uc.log.Warn().Msg("kpi: no hay tabla de comisiones activa, no se pagará comisión")
		return tiers, []string{entity.TierReasonNoSchedule}, nil
	}
	return tiers, nil, nil
}

// selectTarget exige como máximo una meta activa por (usuario, período).
func selectTarget(userID string, period entity.Period, targets []*entity.KpiTarget) (*entity.KpiTarget, []string, error) {
	switch len(targets) {
	case 0:
		return nil, nil, nil
	case 1:
		if err := domainkpi.ValidateTarget(targets[0]); err != nil {
			return nil, nil, err
		}
		return targets[0], nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: usuario %s, período %s, %d metas",
			domain.ErrAmbiguousTarget, userID, period, len(targets))
	}
}

// groupByUser agrupa metas por usuario conservando el orden de aparición.
func groupByUser(targets []*entity.KpiTarget) [][]*entity.KpiTarget {
	index := make(map[string]int, len(targets))
	var groups [][]*entity.KpiTarget
	for _, t := range targets {
		if t == nil {
			continue
		}
		if i, ok := index[t.UserID]; ok {
			groups[i] = append(groups[i], t)
			continue
		}
		index[t.UserID] = len(groups)
		groups = append(groups, []*entity.KpiTarget{t})
	}
	return groups
}

func (uc *KpiUseCase) logSuccess(res *RunResult) {
	rec := res.Record
	ev := uc.log.Info()
	if len(res.Warnings) > 0 {
		ev = uc.log.Warn().Strs("warnings", res.Warnings)
	}
	tier := 0
	if rec.CommissionTierLevel != nil {
		tier = *rec.CommissionTierLevel
	}
	ev.Str("user_id", rec.UserID).
		Str("period", rec.Period.String()).
		Str("revenue", rec.TotalRevenue.StringFixed(2)).
		Str("achievement_pct", rec.AchievementPercentage.StringFixed(2)).
		Int("tier", tier).
		Str("commission", rec.CommissionAmount.StringFixed(2)).
		Bool("created", res.Created).
		Msg("kpi: registro recalculado")
}

func (uc *KpiUseCase) logFailure(userID string, period entity.Period, err error) {
	uc.log.Error().Err(err).
		Str("user_id", userID).
		Str("period", period.String()).
		Msg("kpi: fallo en el cálculo del usuario")
}
