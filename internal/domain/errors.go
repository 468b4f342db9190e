package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Motor de KPI y comisiones.
	ErrInvalidPeriod       = errors.New("período inválido, formato esperado YYYY-MM")
	ErrAmbiguousTarget     = errors.New("más de una meta activa para el usuario en el período")
	ErrInvalidTarget       = errors.New("meta KPI inválida")
	ErrInvalidTierSchedule = errors.New("tabla de comisiones inválida")
)
