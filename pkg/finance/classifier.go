package finance

import "github.com/shopspring/decimal"

// Classification is the display view of a single payment.
type Classification struct {
	MontoPendiente   decimal.Decimal `json:"montoPendiente"`
	PorcentajePagado float64         `json:"porcentajePagado"`
	Etiqueta         string          `json:"etiqueta"`
	Color            string          `json:"color"`
}

// Classify computes the pending amount and paid percentage of a payment and
// the label and color for its estado. A negative pending amount is returned
// as is when montoAbonado exceeds montoTotal.
func Classify(montoTotal, montoAbonado decimal.Decimal, estado string) Classification {
	return Classification{
		MontoPendiente:   montoTotal.Sub(montoAbonado),
		PorcentajePagado: Percentage(montoAbonado, montoTotal),
		Etiqueta:         StatusLabel(estado),
		Color:            StatusColor(estado),
	}
}

// ClassifyStrings is Classify over the decimal strings the API returns.
func ClassifyStrings(montoTotal, montoAbonado, estado string) Classification {
	return Classify(ParseAmount(montoTotal), ParseAmount(montoAbonado), estado)
}

// StatusLabel returns the Spanish label for an estado.
func StatusLabel(estado string) string {
	switch estado {
	case EstadoPendiente:
		return "Pendiente"
	case EstadoParcial:
		return "Parcial"
	case EstadoPagado:
		return "Pagado"
	case EstadoVencido:
		return "Vencido"
	default:
		return "Desconocido"
	}
}

// StatusColor returns the badge classes for an estado.
func StatusColor(estado string) string {
	switch estado {
	case EstadoPendiente:
		return "bg-red-100 text-red-800 border-red-200"
	case EstadoParcial:
		return "bg-yellow-100 text-yellow-800 border-yellow-200"
	case EstadoPagado:
		return "bg-green-100 text-green-800 border-green-200"
	case EstadoVencido:
		return "bg-red-100 text-red-900 border-red-300"
	default:
		return "bg-gray-100 text-gray-800 border-gray-200"
	}
}
