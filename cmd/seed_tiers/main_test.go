package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/domain"
)

const tablaYAML = `
tiers:
  - level: 1
    min: 15000000
    max: 30000000
    percentage: 5
  - level: 2
    min: 30000000
    max: 60000000
    percentage: 7
  - level: 3
    min: 60000000
    percentage: 10
`

func TestParseSchedule(t *testing.T) {
	tiers, err := parseSchedule(strings.NewReader(tablaYAML))
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	assert.Equal(t, "15000000", tiers[0].MinAmount.String())
	require.NotNil(t, tiers[0].MaxAmount)
	assert.Equal(t, "30000000", tiers[0].MaxAmount.String())
	assert.Nil(t, tiers[2].MaxAmount, "el tramo superior no tiene tope")
	assert.Equal(t, "10", tiers[2].Percentage.String())
}

func TestParseSchedule_Solapamiento(t *testing.T) {
	yml := strings.Replace(tablaYAML, "min: 30000000", "min: 20000000", 1)

	_, err := parseSchedule(strings.NewReader(yml))
	assert.ErrorIs(t, err, domain.ErrInvalidTierSchedule)
}

func TestParseSchedule_Vacio(t *testing.T) {
	_, err := parseSchedule(strings.NewReader("tiers: []\n"))
	assert.Error(t, err)
}

func TestParseSchedule_MontoInvalido(t *testing.T) {
	_, err := parseSchedule(strings.NewReader("tiers:\n  - level: 1\n    min: quince\n    percentage: 5\n"))
	assert.Error(t, err)
}

func TestBuildSQL(t *testing.T) {
	tiers, err := parseSchedule(strings.NewReader(tablaYAML))
	require.NoError(t, err)

	sql := buildSQL(tiers, []string{"id-1", "id-2", "id-3"}, "config/commission_tiers.yaml")

	assert.Contains(t, sql, "-- Generado desde commission_tiers.yaml")
	assert.Contains(t, sql, "UPDATE commission_tiers SET is_active = false")
	assert.Contains(t, sql, "('id-1', 15000000, 30000000, 5, 1, true),")
	assert.Contains(t, sql, "('id-3', 60000000, NULL, 10, 3, true);")
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}
