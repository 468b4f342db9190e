// Package scheduler dispara periódicamente el recálculo de KPI por período.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

// periodRunner lo implementa *kpi.KpiUseCase.
type periodRunner interface {
	RunForPeriod(ctx context.Context, period entity.Period) (*kpi.BatchSummary, error)
}

// Scheduler recalcula el mes en curso y, hasta el día de cierre, también el mes anterior
// (contratos y pagos conciliados tarde).
type Scheduler struct {
	cron     *cron.Cron
	runner   periodRunner
	closeDay int
	log      *logger.Logger
	ctx      context.Context
	now      func() time.Time
}

// New crea el scheduler. Las expresiones cron llevan segundos (6 campos).
// closeDay <= 0 desactiva el recálculo del mes anterior.
func New(ctx context.Context, runner periodRunner, closeDay int, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		runner:   runner,
		closeDay: closeDay,
		log:      log,
		ctx:      ctx,
		now:      time.Now,
	}
}

// Register agenda el recálculo con la expresión indicada.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register kpi task %q: %w", spec, err)
	}
	return nil
}

// Start inicia el cron.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler iniciado")
}

// Stop detiene el cron y espera a que termine la corrida en curso o venza ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler detenido")
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler detenido sin esperar la corrida en curso")
	}
}

// RunNow recalcula los períodos vigentes de inmediato (también lo usa el cron).
func (s *Scheduler) RunNow() {
	for _, p := range PeriodsDue(s.now(), s.closeDay) {
		if err := s.ctx.Err(); err != nil {
			return
		}
		summary, err := s.runner.RunForPeriod(s.ctx, p)
		if err != nil {
			s.log.Error().Err(err).Str("period", p.String()).Msg("recálculo programado fallido")
			continue
		}
		ev := s.log.Info()
		if len(summary.Failed) > 0 {
			ev = s.log.Warn()
		}
		ev.Str("period", p.String()).
			Str("state", string(summary.State)).
			Int("succeeded", summary.Succeeded).
			Int("failed", len(summary.Failed)).
			Msg("recálculo programado terminado")
	}
}

// PeriodsDue períodos a recalcular en now: el mes anterior primero si aún no pasó closeDay.
func PeriodsDue(now time.Time, closeDay int) []entity.Period {
	current := entity.PeriodOf(now)
	if closeDay > 0 && now.Day() <= closeDay {
		return []entity.Period{current.Previous(), current}
	}
	return []entity.Period{current}
}

// cronLogger adapta el logger de la app a cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
