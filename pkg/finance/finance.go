// Package finance holds the payment arithmetic shared by the API and its
// client: display classification, dashboard statistics and income reports.
//
// Nothing here decides a payment's estado. The estado is read as given and
// only used to bucket and label.
package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment states as stored by the backend
const (
	EstadoPendiente = "PENDIENTE"
	EstadoParcial   = "PARCIAL"
	EstadoPagado    = "PAGADO"
	EstadoVencido   = "VENCIDO"
)

// Payment is the subset of a payment record the aggregators read.
type Payment struct {
	MontoTotal        decimal.Decimal
	MontoAbonado      decimal.Decimal
	Estado            string
	FechaPagoEsperada time.Time
}

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a decimal string. Anything unparseable is zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percentage returns part/whole*100 rounded to 2 decimals, or 0 when whole is not positive.
func Percentage(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}

// CountPercentage is Percentage over counts.
func CountPercentage(part, whole int) float64 {
	return Percentage(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}

// Money rounds an amount to cents for JSON output.
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// day truncates t to its UTC calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
