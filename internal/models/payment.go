package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// Payment is one expected rent installment of a contract
type Payment struct {
	Base
	MontoTotal        decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"montoTotal"`
	MontoAbonado      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"montoAbonado"`
	Estado            string          `gorm:"size:20;not null;default:PENDIENTE;index" json:"estado"`
	FechaPagoEsperada finance.Date    `gorm:"not null;index" json:"fechaPagoEsperada"`
	FechaPagoReal     *finance.Date   `json:"fechaPagoReal"`
	ContratoID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"contratoId"`

	// Associations
	Contrato *Contract `gorm:"foreignKey:ContratoID" json:"contrato,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment estado constants
const (
	PaymentEstadoPendiente = finance.EstadoPendiente
	PaymentEstadoParcial   = finance.EstadoParcial
	PaymentEstadoPagado    = finance.EstadoPagado
	PaymentEstadoVencido   = finance.EstadoVencido
)

// IsValidPaymentEstado reports whether s names a payment estado
func IsValidPaymentEstado(s string) bool {
	switch s {
	case PaymentEstadoPendiente, PaymentEstadoParcial, PaymentEstadoPagado, PaymentEstadoVencido:
		return true
	}
	return false
}

// MayAbonar returns true while an abono can still be recorded
func (p *Payment) MayAbonar() bool {
	return p.Estado != PaymentEstadoPagado
}

// IsOverdue reports whether the due date passed without full payment
func (p *Payment) IsOverdue(now time.Time) bool {
	if p.Estado != PaymentEstadoPendiente && p.Estado != PaymentEstadoParcial {
		return false
	}
	return p.FechaPagoEsperada.Before(finance.NewDate(now))
}

// Saldo is the amount still owed
func (p *Payment) Saldo() decimal.Decimal {
	return p.MontoTotal.Sub(p.MontoAbonado)
}

// Finance projects the payment onto the aggregator input
func (p *Payment) Finance() finance.Payment {
	return finance.Payment{
		MontoTotal:        p.MontoTotal,
		MontoAbonado:      p.MontoAbonado,
		Estado:            p.Estado,
		FechaPagoEsperada: p.FechaPagoEsperada.Time,
	}
}

// FinancePayments maps a slice for the aggregators
func FinancePayments(payments []Payment) []finance.Payment {
	out := make([]finance.Payment, len(payments))
	for i := range payments {
		out[i] = payments[i].Finance()
	}
	return out
}

// PaymentResponse adds the derived display fields to a payment
type PaymentResponse struct {
	*Payment
	MontoPendiente   decimal.Decimal `json:"montoPendiente"`
	PorcentajePagado float64         `json:"porcentajePagado"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	c := finance.Classify(p.MontoTotal, p.MontoAbonado, p.Estado)
	return PaymentResponse{
		Payment:          p,
		MontoPendiente:   c.MontoPendiente,
		PorcentajePagado: c.PorcentajePagado,
	}
}
