package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyIncome is the income report for one calendar month.
type MonthlyIncome struct {
	Year                   int     `json:"year"`
	Month                  int     `json:"month"`
	TotalEsperado          float64 `json:"totalEsperado"`
	TotalPagado            float64 `json:"totalPagado"`
	TotalPendiente         float64 `json:"totalPendiente"`
	PorcentajePagado       float64 `json:"porcentajePagado"`
	NumeroPagosEsperados   int     `json:"numeroPagosEsperados"`
	NumeroPagosCompletados int     `json:"numeroPagosCompletados"`
}

// AnnualIncome is the twelve monthly reports of a year and their totals.
type AnnualIncome struct {
	Year                   int             `json:"year"`
	TotalEsperado          float64         `json:"totalEsperado"`
	TotalPagado            float64         `json:"totalPagado"`
	TotalPendiente         float64         `json:"totalPendiente"`
	PorcentajePagado       float64         `json:"porcentajePagado"`
	NumeroPagosEsperados   int             `json:"numeroPagosEsperados"`
	NumeroPagosCompletados int             `json:"numeroPagosCompletados"`
	ReporteMensual         []MonthlyIncome `json:"reporteMensual"`
}

// EstadoDistribution is the share of one estado within a comparison report.
type EstadoDistribution struct {
	Cantidad   int     `json:"cantidad"`
	Monto      float64 `json:"monto"`
	Porcentaje float64 `json:"porcentaje"`
}

// DistribucionPorEstado breaks a comparison report down by estado.
type DistribucionPorEstado struct {
	Pagado    EstadoDistribution `json:"pagado"`
	Parcial   EstadoDistribution `json:"parcial"`
	Pendiente EstadoDistribution `json:"pendiente"`
	Vencido   EstadoDistribution `json:"vencido"`
}

// Comparison is the income report over an arbitrary date range.
type Comparison struct {
	FechaInicio                string                `json:"fechaInicio"`
	FechaFin                   string                `json:"fechaFin"`
	TotalEsperado              float64               `json:"totalEsperado"`
	TotalPagado                float64               `json:"totalPagado"`
	TotalParcial               float64               `json:"totalParcial"`
	TotalPendiente             float64               `json:"totalPendiente"`
	TotalVencido               float64               `json:"totalVencido"`
	PorcentajePagadoVsEsperado float64               `json:"porcentajePagadoVsEsperado"`
	Desempeno                  string                `json:"desempeno"`
	DistribucionPorEstado      DistribucionPorEstado `json:"distribucionPorEstado"`
}

const dateLayout = "2006-01-02"

// bucket accumulates amounts in exact decimals, rounded to cents on read.
type bucket struct {
	esperado  decimal.Decimal
	pagado    decimal.Decimal
	count     int
	completed int
}

func (b *bucket) add(p Payment) {
	b.esperado = b.esperado.Add(p.MontoTotal)
	b.pagado = b.pagado.Add(p.MontoAbonado)
	b.count++
	if p.Estado == EstadoPagado {
		b.completed++
	}
}

func (b *bucket) monthly(year int, month time.Month) MonthlyIncome {
	esperado := b.esperado.Round(2)
	pagado := b.pagado.Round(2)
	return MonthlyIncome{
		Year:                   year,
		Month:                  int(month),
		TotalEsperado:          esperado.InexactFloat64(),
		TotalPagado:            pagado.InexactFloat64(),
		TotalPendiente:         esperado.Sub(pagado).InexactFloat64(),
		PorcentajePagado:       Percentage(pagado, esperado),
		NumeroPagosEsperados:   b.count,
		NumeroPagosCompletados: b.completed,
	}
}

// MonthlyReport reports the payments expected in the given month.
func MonthlyReport(payments []Payment, year int, month time.Month) MonthlyIncome {
	var b bucket
	for _, p := range payments {
		y, m, _ := p.FechaPagoEsperada.UTC().Date()
		if y == year && m == month {
			b.add(p)
		}
	}
	return b.monthly(year, month)
}

// AnnualReport reports every month of the year. The annual totals are the
// sums of the rounded monthly figures so that the months always add up.
func AnnualReport(payments []Payment, year int) AnnualIncome {
	var months [12]bucket
	for _, p := range payments {
		y, m, _ := p.FechaPagoEsperada.UTC().Date()
		if y == year {
			months[m-1].add(p)
		}
	}

	report := AnnualIncome{Year: year, ReporteMensual: make([]MonthlyIncome, 0, 12)}
	esperado := decimal.Zero
	pagado := decimal.Zero
	for i := range months {
		esperado = esperado.Add(months[i].esperado.Round(2))
		pagado = pagado.Add(months[i].pagado.Round(2))
		report.NumeroPagosEsperados += months[i].count
		report.NumeroPagosCompletados += months[i].completed
		report.ReporteMensual = append(report.ReporteMensual, months[i].monthly(year, time.Month(i+1)))
	}

	report.TotalEsperado = esperado.InexactFloat64()
	report.TotalPagado = pagado.InexactFloat64()
	report.TotalPendiente = esperado.Sub(pagado).InexactFloat64()
	report.PorcentajePagado = Percentage(pagado, esperado)
	return report
}

// ComparisonReport reports payments expected between from and to, both
// inclusive at day granularity. Each estado bucket sums montoTotal, and its
// percentage is its share of the payment count.
func ComparisonReport(payments []Payment, from, to time.Time) Comparison {
	start := day(from)
	end := day(to).AddDate(0, 0, 1)

	type estadoBucket struct {
		count int
		monto decimal.Decimal
	}
	buckets := map[string]*estadoBucket{
		EstadoPagado:    {},
		EstadoParcial:   {},
		EstadoPendiente: {},
		EstadoVencido:   {},
	}

	esperado := decimal.Zero
	pagado := decimal.Zero
	total := 0
	for _, p := range payments {
		due := p.FechaPagoEsperada
		if due.Before(start) || !due.Before(end) {
			continue
		}
		total++
		esperado = esperado.Add(p.MontoTotal)
		pagado = pagado.Add(p.MontoAbonado)
		if b, ok := buckets[p.Estado]; ok {
			b.count++
			b.monto = b.monto.Add(p.MontoTotal)
		}
	}

	dist := func(estado string) EstadoDistribution {
		b := buckets[estado]
		return EstadoDistribution{
			Cantidad:   b.count,
			Monto:      Money(b.monto),
			Porcentaje: CountPercentage(b.count, total),
		}
	}

	pct := Percentage(pagado, esperado)
	report := Comparison{
		FechaInicio:                start.Format(dateLayout),
		FechaFin:                   day(to).Format(dateLayout),
		TotalEsperado:              Money(esperado),
		TotalPagado:                Money(pagado),
		PorcentajePagadoVsEsperado: pct,
		Desempeno:                  Desempeno(pct),
		DistribucionPorEstado: DistribucionPorEstado{
			Pagado:    dist(EstadoPagado),
			Parcial:   dist(EstadoParcial),
			Pendiente: dist(EstadoPendiente),
			Vencido:   dist(EstadoVencido),
		},
	}
	report.TotalParcial = report.DistribucionPorEstado.Parcial.Monto
	report.TotalPendiente = report.DistribucionPorEstado.Pendiente.Monto
	report.TotalVencido = report.DistribucionPorEstado.Vencido.Monto
	return report
}

// Desempeno rates a collection percentage.
func Desempeno(porcentaje float64) string {
	switch {
	case porcentaje >= 90:
		return "Excelente"
	case porcentaje >= 70:
		return "Buena"
	default:
		return "Necesita Mejora"
	}
}
