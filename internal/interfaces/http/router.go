package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	KpiUC     kpiService
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// KPI y comisiones (requieren Bearer Token con rol admin o gerente)
	kpiGroup := api.Group("/kpi", AuthMiddleware(deps.JWTSecret), RequireRole("admin", "gerente"))
	kpiHandler := NewKpiHandler(deps.KpiUC, deps.Logger)
	kpiGroup.Post("/recalculate/user", kpiHandler.RecalculateUser)
	kpiGroup.Post("/recalculate/period", kpiHandler.RecalculatePeriod)
	kpiGroup.Post("/recalculate/target/:id", kpiHandler.RecalculateTarget)
	kpiGroup.Get("/records", kpiHandler.GetRecord)
}
