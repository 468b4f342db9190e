package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	domainkpi "github.com/jhoicas/Comisiones-api/internal/domain/kpi"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/Comisiones-api/internal/interfaces/http"
	"github.com/jhoicas/Comisiones-api/pkg/config"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("kpi_workers", cfg.KPI.Workers).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	kpiUC := kpi.NewKpiUseCase(
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

	// Recálculo programado (mes en curso + mes anterior hasta KPI_CLOSE_DAY)
	var sched *scheduler.Scheduler
	if cfg.KPI.Cron != "" {
		sched = scheduler.New(ctx, kpiUC, cfg.KPI.CloseDay, log)
		if err := sched.Register(cfg.KPI.Cron); err != nil {
			log.Fatal().Err(err).Msg("programar recálculo KPI")
		}
		sched.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute * 5, // recálculo de período completo
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Comisiones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		KpiUC:     kpiUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		stop()
		sched.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
