package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// kpiService contrato que el handler necesita; lo implementa *kpi.KpiUseCase.
type kpiService interface {
	RunForUser(ctx context.Context, userID string, period entity.Period) (*kpi.RunResult, error)
	RunForPeriod(ctx context.Context, period entity.Period) (*kpi.BatchSummary, error)
	RunByTargetID(ctx context.Context, targetID string) (*kpi.RunResult, error)
	GetRecord(ctx context.Context, userID string, period entity.Period) (*entity.KpiRecord, error)
}

// KpiHandler maneja los endpoints de recálculo y consulta de KPI/comisiones.
type KpiHandler struct {
	uc  kpiService
	log *logger.Logger
}

// NewKpiHandler construye el handler.
func NewKpiHandler(uc kpiService, log *logger.Logger) *KpiHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &KpiHandler{uc: uc, log: log}
}

// RecalculateUser godoc
// @Summary      Recalcula el KPI y la comisión de un vendedor en un período
// @Tags         kpi
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecalculateUserRequest  true  "Usuario y período (YYYY-MM)"
// @Success      200  {object}  dto.RunResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/kpi/recalculate/user [post]
func (h *KpiHandler) RecalculateUser(c *fiber.Ctx) error {
	var req dto.RecalculateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: err.Error()})
	}
	period, err := entity.ParsePeriod(req.Period)
	if err != nil {
		return h.fail(c, err)
	}

	res, err := h.uc.RunForUser(c.Context(), req.UserID, period)
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info().Str("requested_by", GetUserID(c)).Str("user_id", req.UserID).
		Str("period", period.String()).Msg("kpi: recálculo manual de usuario")
	return c.JSON(dto.ToRunResultDTO(res))
}

// RecalculatePeriod godoc
// @Summary      Recalcula todas las metas activas de un período
// @Description  Responde 200 si todas las metas se procesaron y 207 si hubo fallas aisladas.
// @Tags         kpi
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecalculatePeriodRequest  true  "Período (YYYY-MM)"
// @Success      200  {object}  dto.BatchSummaryDTO
// @Success      207  {object}  dto.BatchSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/kpi/recalculate/period [post]
func (h *KpiHandler) RecalculatePeriod(c *fiber.Ctx) error {
	var req dto.RecalculatePeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: err.Error()})
	}
	period, err := entity.ParsePeriod(req.Period)
	if err != nil {
		return h.fail(c, err)
	}

	summary, err := h.uc.RunForPeriod(c.Context(), period)
	if err != nil {
		return h.fail(c, err)
	}
	status := fiber.StatusOK
	if summary.State == kpi.BatchPartiallyFailed {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(dto.ToBatchSummaryDTO(summary))
}

// RecalculateTarget godoc
// @Summary      Recalcula el KPI asociado a una meta (al crearla o editarla)
// @Tags         kpi
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la meta"
// @Success      200  {object}  dto.RunResultDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/kpi/recalculate/target/{id} [post]
func (h *KpiHandler) RecalculateTarget(c *fiber.Ctx) error {
	res, err := h.uc.RunByTargetID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ToRunResultDTO(res))
}

// GetRecord godoc
// @Summary      Consulta el registro KPI almacenado de un vendedor
// @Tags         kpi
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  true  "ID del vendedor"
// @Param        period   query  string  true  "Período YYYY-MM"
// @Success      200  {object}  dto.KpiRecordDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kpi/records [get]
func (h *KpiHandler) GetRecord(c *fiber.Ctx) error {
	var q dto.KpiRecordQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := dto.Validate(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: err.Error()})
	}
	period, err := entity.ParsePeriod(q.Period)
	if err != nil {
		return h.fail(c, err)
	}
	rec, err := h.uc.GetRecord(c.Context(), q.UserID, period)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ToKpiRecordDTO(rec))
}

// fail traduce errores de dominio a HTTP. Los no tipificados se registran y responden 500.
func (h *KpiHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidPeriod), errors.Is(err, domain.ErrInvalidTarget):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrAmbiguousTarget), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTierSchedule):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_TIER_SCHEDULE", Message: err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("kpi: error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "error interno, intente más tarde"})
	}
}
