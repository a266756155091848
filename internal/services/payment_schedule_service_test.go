package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/models"
)

func scheduleDates(payments []models.Payment) []string {
	out := make([]string, len(payments))
	for i, p := range payments {
		out[i] = p.FechaPagoEsperada.String()
	}
	return out
}

func TestGenerateSchedule_ClampsShortMonths(t *testing.T) {
	contract := &models.Contract{
		Base:         models.Base{ID: uuid.New()},
		FechaInicio:  date("2024-01-31"),
		FechaFin:     date("2024-06-01"),
		CanonMensual: dec("5000"),
	}

	payments := NewPaymentScheduleService().GenerateSchedule(contract, nil)
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}, scheduleDates(payments))
	for _, p := range payments {
		assert.Equal(t, contract.ID, p.ContratoID)
		assert.True(t, p.MontoAbonado.IsZero())
	}
}

func TestGenerateSchedule_EndDateExclusive(t *testing.T) {
	contract := &models.Contract{
		FechaInicio:  date("2025-01-10"),
		FechaFin:     date("2025-04-10"),
		CanonMensual: dec("1000"),
	}

	payments := NewPaymentScheduleService().GenerateSchedule(contract, nil)
	assert.Equal(t, []string{"2025-01-10", "2025-02-10", "2025-03-10"}, scheduleDates(payments))
}

func TestGenerateSchedule_SkipsCoveredMonths(t *testing.T) {
	contract := &models.Contract{
		FechaInicio:  date("2025-01-05"),
		FechaFin:     date("2025-05-01"),
		CanonMensual: dec("1000"),
	}
	existing := []models.Payment{
		{FechaPagoEsperada: date("2025-02-20")},
		{FechaPagoEsperada: date("2025-04-05")},
	}

	payments := NewPaymentScheduleService().GenerateSchedule(contract, existing)
	assert.Equal(t, []string{"2025-01-05", "2025-03-05"}, scheduleDates(payments))
}

func TestGenerateSchedule_FullyCovered(t *testing.T) {
	contract := &models.Contract{
		FechaInicio:  date("2025-01-01"),
		FechaFin:     date("2025-02-01"),
		CanonMensual: dec("1000"),
	}
	existing := []models.Payment{{FechaPagoEsperada: date("2025-01-01")}}

	assert.Empty(t, NewPaymentScheduleService().GenerateSchedule(contract, existing))
}

func TestAddMonthsClamped(t *testing.T) {
	start := time.Date(2023, time.October, 31, 0, 0, 0, 0, time.UTC)
	got := addMonthsClamped(start, 4)
	require.Equal(t, time.February, got.Month())
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 29, got.Day())
}
