package finance

import "github.com/shopspring/decimal"

// Stats summarizes a list of payments for the payments dashboard.
type Stats struct {
	TotalPagos          int     `json:"totalPagos"`
	MontoTotalEsperado  string  `json:"montoTotalEsperado"`
	MontoTotalRecaudado string  `json:"montoTotalRecaudado"`
	PagosPendientes     int     `json:"pagosPendientes"`
	PagosParciales      int     `json:"pagosParciales"`
	PagosCompletados    int     `json:"pagosCompletados"`
	PorcentajePagado    float64 `json:"porcentajePagado"`
}

// ComputeStats aggregates payments. Overdue payments count as pending here.
func ComputeStats(payments []Payment) Stats {
	esperado := decimal.Zero
	recaudado := decimal.Zero
	stats := Stats{TotalPagos: len(payments)}

	for _, p := range payments {
		esperado = esperado.Add(p.MontoTotal)
		recaudado = recaudado.Add(p.MontoAbonado)

		switch p.Estado {
		case EstadoPendiente, EstadoVencido:
			stats.PagosPendientes++
		case EstadoParcial:
			stats.PagosParciales++
		case EstadoPagado:
			stats.PagosCompletados++
		}
	}

	stats.MontoTotalEsperado = esperado.StringFixed(2)
	stats.MontoTotalRecaudado = recaudado.StringFixed(2)
	stats.PorcentajePagado = Percentage(recaudado, esperado)
	return stats
}
