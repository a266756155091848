package services

import (
	"time"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// PaymentScheduleService handles payment schedule generation
type PaymentScheduleService struct{}

// NewPaymentScheduleService creates a new payment schedule service
func NewPaymentScheduleService() *PaymentScheduleService {
	return &PaymentScheduleService{}
}

// GenerateSchedule returns one PENDIENTE payment of canonMensual per month
// from fechaInicio up to, not including, fechaFin. Each due date keeps the
// day of fechaInicio, clamped to the last day of shorter months. Months
// already covered by existing are skipped.
func (s *PaymentScheduleService) GenerateSchedule(contract *models.Contract, existing []models.Payment) []models.Payment {
	covered := make(map[string]bool, len(existing))
	for _, p := range existing {
		covered[monthKey(p.FechaPagoEsperada.Time)] = true
	}

	start := contract.FechaInicio.UTC()
	var payments []models.Payment
	for i := 0; ; i++ {
		due := finance.NewDate(addMonthsClamped(start, i))
		if !due.Before(contract.FechaFin) {
			break
		}
		if covered[monthKey(due.Time)] {
			continue
		}
		payments = append(payments, models.Payment{
			MontoTotal:        contract.CanonMensual,
			Estado:            models.PaymentEstadoPendiente,
			FechaPagoEsperada: due,
			ContratoID:        contract.ID,
		})
	}
	return payments
}

// addMonthsClamped adds n months keeping t's day, or the month's last day
// when it is shorter (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), lastDay), 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
