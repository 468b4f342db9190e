package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

var julio = entity.Period{Month: time.July, Year: 2025}

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand([]string{cmdUser, "--user=ana", "--period=2025-07"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, command{name: cmdUser, userID: "ana", period: julio}, cmd)

	cmd, err = parseCommand([]string{cmdPeriod, "--period", "2025-07", "--workers", "8"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8, cmd.workers)
	assert.Equal(t, julio, cmd.period)

	cmd, err = parseCommand([]string{cmdTarget, "--target-id=m1"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "m1", cmd.targetID)
}

func TestParseCommand_Errores(t *testing.T) {
	cases := map[string][]string{
		"sin subcomando":      nil,
		"subcomando invalido": {"borrar-todo"},
		"falta usuario":       {cmdUser, "--period=2025-07"},
		"periodo invalido":    {cmdPeriod, "--period=2025-13"},
		"falta periodo":       {cmdPeriod},
		"falta meta":          {cmdTarget},
		"flag desconocido":    {cmdPeriod, "--period=2025-07", "--user=ana"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCommand(args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseCommand_PeriodoInvalidoEsErrorDeDominio(t *testing.T) {
	_, err := parseCommand([]string{cmdUser, "--user=ana", "--period=julio"}, io.Discard)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

type fakeRunner struct {
	result  *kpi.RunResult
	summary *kpi.BatchSummary
	err     error
}

func (f *fakeRunner) RunForUser(context.Context, string, entity.Period) (*kpi.RunResult, error) {
	return f.result, f.err
}

func (f *fakeRunner) RunForPeriod(context.Context, entity.Period) (*kpi.BatchSummary, error) {
	return f.summary, f.err
}

func (f *fakeRunner) RunByTargetID(context.Context, string) (*kpi.RunResult, error) {
	return f.result, f.err
}

func TestExecute_CodigosDeSalida(t *testing.T) {
	rec := &entity.KpiRecord{ID: "rec-1", UserID: "ana", Period: julio, TotalRevenue: decimal.NewFromInt(40_000_000), CommissionAmount: decimal.NewFromInt(2_800_000)}
	ctx := context.Background()

	var out bytes.Buffer
	code := execute(ctx, &fakeRunner{result: &kpi.RunResult{Record: rec, Created: true}}, command{name: cmdUser, userID: "ana", period: julio}, &out, io.Discard)
	assert.Equal(t, exitOK, code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, true, body["created"])

	code = execute(ctx, &fakeRunner{err: errors.New("db caída")}, command{name: cmdTarget, targetID: "m1"}, io.Discard, io.Discard)
	assert.Equal(t, exitError, code)

	partial := &kpi.BatchSummary{Period: julio, State: kpi.BatchPartiallyFailed, Succeeded: 1,
		Failed: []kpi.UserFailure{{UserID: "beto", Err: errors.New("timeout")}}}
	code = execute(ctx, &fakeRunner{summary: partial}, command{name: cmdPeriod, period: julio}, io.Discard, io.Discard)
	assert.Equal(t, exitPartial, code)

	complete := &kpi.BatchSummary{Period: julio, State: kpi.BatchCompleted, Succeeded: 2}
	code = execute(ctx, &fakeRunner{summary: complete}, command{name: cmdPeriod, period: julio}, io.Discard, io.Discard)
	assert.Equal(t, exitOK, code)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "2.800.000,00", formatMoney(decimal.NewFromInt(2_800_000)))
	assert.Equal(t, "0,00", formatMoney(decimal.Zero))
}
