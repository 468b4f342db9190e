package kpi_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/kpi"
)

var periodoJulio = entity.Period{Month: time.July, Year: 2025}

func contrato(id, status string, total int64) entity.Contract {
	return entity.Contract{
		ID:          id,
		UserID:      "vendedor-1",
		Status:      status,
		TotalAmount: dec(total),
		CreatedAt:   time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC),
	}
}

func pago(contractID string, amount int64) entity.PaymentTransaction {
	return entity.PaymentTransaction{ContractID: contractID, Amount: dec(amount), Status: "matched"}
}

func TestAggregate_TransaccionesTienenPrecedenciaSobreTotal(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	src := entity.RevenueSource{
		Contract:            contrato("c1", "paid", 50_000_000),
		MatchedTransactions: []entity.PaymentTransaction{pago("c1", 5_000_000), pago("c1", 3_000_000)},
	}

	total := agg.Aggregate("vendedor-1", periodoJulio, []entity.RevenueSource{src})

	assert.True(t, total.Amount.Equal(dec(8_000_000)), "esperado 8M, obtenido %s", total.Amount)
	assert.Equal(t, 1, total.ContractCount)
}

func TestAggregate_DepositoSinTransaccionesCuentaLaMitad(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	src := entity.RevenueSource{Contract: contrato("c1", "deposit", 10_000_000)}

	total := agg.Aggregate("vendedor-1", periodoJulio, []entity.RevenueSource{src})

	assert.True(t, total.Amount.Equal(dec(5_000_000)), "esperado 5M, obtenido %s", total.Amount)
}

func TestAggregate_EstadoParcialSinDistinguirMayusculas(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	src := entity.RevenueSource{Contract: contrato("c1", "Deposit", 10_000_000)}

	total := agg.Aggregate("vendedor-1", periodoJulio, []entity.RevenueSource{src})
	assert.True(t, total.Amount.Equal(dec(5_000_000)))
}

func TestAggregate_SinTransaccionesEstadoCompletoCuentaTotal(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	sources := []entity.RevenueSource{
		{Contract: contrato("c1", "completed", 10_000_000)},
		{Contract: contrato("c2", "deposit", 4_000_000)},
		{Contract: contrato("c3", "paid", 1_000_000), MatchedTransactions: []entity.PaymentTransaction{pago("c3", 700_000)}},
	}

	total := agg.Aggregate("vendedor-1", periodoJulio, sources)

	assert.True(t, total.Amount.Equal(dec(12_700_000)), "obtenido %s", total.Amount)
	assert.Equal(t, 3, total.ContractCount)
}

func TestAggregate_ListaVaciaNoEsError(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	total := agg.Aggregate("vendedor-1", periodoJulio, nil)

	assert.True(t, total.Amount.IsZero())
	assert.Equal(t, 0, total.ContractCount)
}

// Los reembolsos se suman tal cual: el aporte neto de un contrato puede ser negativo.
func TestAggregate_AporteNegativoNoSeRecorta(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	sources := []entity.RevenueSource{
		{
			Contract:            contrato("c1", "paid", 2_000_000),
			MatchedTransactions: []entity.PaymentTransaction{pago("c1", 1_000_000), pago("c1", -3_000_000)},
		},
		{Contract: contrato("c2", "completed", 5_000_000)},
	}

	total := agg.Aggregate("vendedor-1", periodoJulio, sources)

	assert.True(t, total.Amount.Equal(dec(3_000_000)), "obtenido %s", total.Amount)
	assert.True(t, agg.Contribution(sources[0]).Equal(dec(-2_000_000)))
}

func TestAggregate_RatioParcialConfigurable(t *testing.T) {
	policy := kpi.DefaultRevenuePolicy()
	policy.PartialStatuses = []string{"deposit", "signed"}
	policy.PartialRatio = decimal.RequireFromString("0.3")
	agg := kpi.NewRevenueAggregator(policy)

	total := agg.Aggregate("vendedor-1", periodoJulio, []entity.RevenueSource{
		{Contract: contrato("c1", "signed", 10_000_000)},
	})
	assert.True(t, total.Amount.Equal(dec(3_000_000)))
}

func TestAggregate_IgnoraContratosDeOtroVendedorOFueraDelPeriodo(t *testing.T) {
	agg := kpi.NewRevenueAggregator(kpi.DefaultRevenuePolicy())
	otro := contrato("c2", "paid", 7_000_000)
	otro.UserID = "vendedor-2"
	agosto := contrato("c3", "paid", 9_000_000)
	agosto.CreatedAt = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	total := agg.Aggregate("vendedor-1", periodoJulio, []entity.RevenueSource{
		{Contract: contrato("c1", "paid", 1_000_000)},
		{Contract: otro},
		{Contract: agosto},
	})

	assert.True(t, total.Amount.Equal(dec(1_000_000)))
	assert.Equal(t, 1, total.ContractCount)
	assert.Equal(t, 2, total.Excluded)
}
