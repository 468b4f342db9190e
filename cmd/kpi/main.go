// kpi recalcula KPI y comisiones desde la línea de comandos (cierres manuales, reprocesos).
//
// Uso:
//
//	go run ./cmd/kpi recalculate-user --user=<id> --period=2025-07
//	go run ./cmd/kpi recalculate-period --period=2025-07 [--workers=8]
//	go run ./cmd/kpi recalculate-target --target-id=<id>
//
// Imprime el resultado en JSON por stdout. Código de salida: 0 ok, 1 error, 2 lote con fallas.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	domainkpi "github.com/jhoicas/Comisiones-api/internal/domain/kpi"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Comisiones-api/pkg/config"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	exitOK      = 0
	exitError   = 1
	exitPartial = 2
)

const (
	cmdUser   = "recalculate-user"
	cmdPeriod = "recalculate-period"
	cmdTarget = "recalculate-target"
)

var errUsage = errors.New("uso: kpi <recalculate-user|recalculate-period|recalculate-target> [flags]")

// command subcomando ya validado.
type command struct {
	name     string
	userID   string
	period   entity.Period
	targetID string
	workers  int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := parseCommand(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "cargar configuración: %v\n", err)
		return exitError
	}
	if cmd.workers > 0 {
		cfg.KPI.Workers = cmd.workers
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: stderr})

	// Ctrl+C cancela el lote: los usuarios no iniciados quedan como fallidos.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return exitError
	}
	defer pool.Close()

	uc := kpi.NewKpiUseCase(
		postgres.NewKpiTargetRepository(pool),
		postgres.NewCommissionTierRepository(pool),
		postgres.NewRevenueSourceRepository(pool),
		postgres.NewKpiRecordRepository(pool),
		postgres.NewTxRunner(pool),
		kpi.Config{
			Workers:       cfg.KPI.Workers,
			MatchedStatus: cfg.KPI.MatchedStatus,
			Policy: domainkpi.RevenuePolicy{
				RecognizedStatuses: cfg.KPI.RecognizedStatuses,
				PartialStatuses:    cfg.KPI.PartialStatuses,
				PartialRatio:       cfg.KPI.PartialRatio,
			},
		},
		log.Component("kpi"),
	)
	return execute(ctx, uc, cmd, stdout, stderr)
}

// kpiRunner lo implementa *kpi.KpiUseCase.
type kpiRunner interface {
	RunForUser(ctx context.Context, userID string, period entity.Period) (*kpi.RunResult, error)
	RunForPeriod(ctx context.Context, period entity.Period) (*kpi.BatchSummary, error)
	RunByTargetID(ctx context.Context, targetID string) (*kpi.RunResult, error)
}

func execute(ctx context.Context, uc kpiRunner, cmd command, stdout, stderr io.Writer) int {
	var (
		res *kpi.RunResult
		err error
	)
	switch cmd.name {
	case cmdPeriod:
		summary, err := uc.RunForPeriod(ctx, cmd.period)
		if err != nil {
			fmt.Fprintf(stderr, "recalcular período %s: %v\n", cmd.period, err)
			return exitError
		}
		if err := writeJSON(stdout, dto.ToBatchSummaryDTO(summary)); err != nil {
			fmt.Fprintf(stderr, "escribir salida: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stderr, "%s: %d ok, %d con falla, comisión total %s\n",
			summary.Period, summary.Succeeded, len(summary.Failed), formatMoney(summary.TotalCommission))
		return batchExitCode(summary)
	case cmdTarget:
		res, err = uc.RunByTargetID(ctx, cmd.targetID)
	default:
		res, err = uc.RunForUser(ctx, cmd.userID, cmd.period)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return exitError
	}
	if err := writeJSON(stdout, dto.ToRunResultDTO(res)); err != nil {
		fmt.Fprintf(stderr, "escribir salida: %v\n", err)
		return exitError
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "advertencia: %s\n", w)
	}
	fmt.Fprintf(stderr, "%s %s: ingreso %s, comisión %s\n", res.Record.UserID, res.Record.Period,
		formatMoney(res.Record.TotalRevenue), formatMoney(res.Record.CommissionAmount))
	return exitOK
}

// parseCommand valida subcomando y flags antes de tocar la base de datos.
func parseCommand(args []string, stderr io.Writer) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}
	cmd := command{name: args[0]}
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var period string
	switch cmd.name {
	case cmdUser:
		fs.StringVar(&cmd.userID, "user", "", "ID del vendedor")
		fs.StringVar(&period, "period", "", "período YYYY-MM")
	case cmdPeriod:
		fs.StringVar(&period, "period", "", "período YYYY-MM")
		fs.IntVar(&cmd.workers, "workers", 0, "paralelismo (por defecto KPI_WORKERS)")
	case cmdTarget:
		fs.StringVar(&cmd.targetID, "target-id", "", "ID de la meta")
	default:
		return command{}, fmt.Errorf("subcomando desconocido %q\n%w", cmd.name, errUsage)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return command{}, err
	}

	switch cmd.name {
	case cmdUser:
		if cmd.userID == "" {
			return command{}, errors.New("--user es obligatorio")
		}
	case cmdTarget:
		if cmd.targetID == "" {
			return command{}, errors.New("--target-id es obligatorio")
		}
		return cmd, nil
	}
	p, err := entity.ParsePeriod(period)
	if err != nil {
		return command{}, fmt.Errorf("--period %q: %w", period, err)
	}
	cmd.period = p
	return cmd, nil
}

func batchExitCode(s *kpi.BatchSummary) int {
	if len(s.Failed) > 0 {
		return exitPartial
	}
	return exitOK
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var printer = message.NewPrinter(language.Spanish)

// formatMoney formatea con separador de miles y dos decimales (es: 2.800.000,00).
func formatMoney(d decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
