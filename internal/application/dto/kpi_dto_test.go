package dto_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/kpi"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

func TestValidate_RecalculateUserRequest(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.RecalculateUserRequest{UserID: "ana", Period: "2025-07"}))

	err := dto.Validate(dto.RecalculateUserRequest{Period: "2025-07"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userid")

	err = dto.Validate(dto.RecalculateUserRequest{UserID: "ana", Period: "2025-13"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datetime")
}

func TestToBatchSummaryDTO_FallasNuncaNull(t *testing.T) {
	start := time.Date(2025, time.August, 1, 2, 0, 0, 0, time.UTC)
	s := &kpi.BatchSummary{
		Period:          entity.Period{Month: time.July, Year: 2025},
		State:           kpi.BatchCompleted,
		Succeeded:       3,
		TotalCommission: decimal.NewFromInt(1500),
		StartedAt:       start,
		FinishedAt:      start.Add(1500 * time.Millisecond),
	}

	out := dto.ToBatchSummaryDTO(s)

	assert.Equal(t, "2025-07", out.Period)
	assert.Equal(t, "COMPLETED", out.State)
	assert.NotNil(t, out.Failed)
	assert.Empty(t, out.Failed)
	assert.Equal(t, int64(1500), out.ElapsedMs)
	assert.Equal(t, 3, out.Total)
}

func TestToBatchSummaryDTO_ConFallas(t *testing.T) {
	s := &kpi.BatchSummary{
		Period: entity.Period{Month: time.July, Year: 2025},
		State:  kpi.BatchPartiallyFailed,
		Failed: []kpi.UserFailure{{UserID: "beto", TargetID: "m2", Err: errors.New("timeout")}},
	}

	out := dto.ToBatchSummaryDTO(s)

	require.Len(t, out.Failed, 1)
	assert.Equal(t, dto.UserFailureDTO{UserID: "beto", TargetID: "m2", Error: "timeout"}, out.Failed[0])
	assert.Equal(t, 1, out.Total)
}
