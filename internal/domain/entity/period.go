package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain"
)

const (
	periodLayout  = "2006-01"
	minPeriodYear = 2000 // año mínimo aceptado para un período KPI
)

// Period identifica un ciclo de KPI/comisión (mes, año).
type Period struct {
	Month time.Month
	Year  int
}

// NewPeriod construye y valida un período.
func NewPeriod(year int, month time.Month) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParsePeriod interpreta un período en formato YYYY-MM.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, strings.TrimSpace(s))
	if err != nil {
		return Period{}, domain.ErrInvalidPeriod
	}
	return NewPeriod(t.Year(), t.Month())
}

// PeriodOf devuelve el período que contiene t.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// Validate verifica mes 1..12 y año razonable.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December || p.Year < minPeriodYear {
		return domain.ErrInvalidPeriod
	}
	return nil
}

// String formato YYYY-MM.
func (p Period) String() string {
	return p.Start().Format(periodLayout)
}

// Start primer instante del período (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End primer instante del período siguiente; el rango es [Start, End).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Previous período inmediatamente anterior.
func (p Period) Previous() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

// Key clave estable (usuario, período) para serializar cálculos.
func (p Period) Key(userID string) string {
	return userID + "|" + p.String()
}
